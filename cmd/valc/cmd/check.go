package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/semantic"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run semantic analysis and report type/resolve errors",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	prog, perrs := parseSource(input, filename)
	if len(perrs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), errors.FormatErrors(perrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	analyzer := semantic.New(filename, input)
	analyzer.Analyze(prog)
	if errs := analyzer.Errors(); len(errs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), errors.FormatErrors(errs, true))
		return fmt.Errorf("semantic analysis failed with %d error(s)", len(errs))
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: no errors\n", filename)
	}
	return nil
}
