package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/lexer"
	"github.com/valc-lang/valc/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse valc source and print the re-serialized AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	prog, perrs := parseSource(input, filename)
	if len(perrs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), errors.FormatErrors(perrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	fmt.Println(prog.String())
	return nil
}

// parseSource lexes and parses input, returning whatever diagnostics the
// parser collected along the way.
func parseSource(input, filename string) (*ast.Program, []*errors.CompilerError) {
	l := lexer.New(input)
	p := parser.New(l, filename, input)
	prog := p.ParseProgram()
	return prog, p.Errors()
}
