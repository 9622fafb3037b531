package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valc-lang/valc/internal/codegen"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/semantic"
)

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile a valc source file to textual LLVM-IR",
	Long: `Run the full pipeline — lex, parse, check, emit — and write the
resulting LLVM-IR to stdout or, with -o, to a file. Invoking clang/llc to
finish linking against the runtime object is the external driver's job
and stays out of scope.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "write emitted IR to this file instead of stdout")
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	gen := codegen.New(filename, input, analyzer.ClassMethods())
	ir := gen.Generate(prog)
	if errs := gen.Errors(); len(errs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), errors.FormatErrors(errs, true))
		return fmt.Errorf("code generation failed with %d error(s)", len(errs))
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "emitted %d bytes of IR\n", len(ir))
	}

	if buildOutput == "" {
		fmt.Print(ir)
		return nil
	}
	return os.WriteFile(buildOutput, []byte(ir), 0o644)
}
