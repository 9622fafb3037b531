package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valc-lang/valc/internal/lexer"
	"github.com/valc-lang/valc/internal/token"
)

var (
	lexShowPos  bool
	lexShowType bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a valc source file and print the token stream",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "lexing %s (%d bytes)\n", filename, len(input))
	}

	l := lexer.New(input)
	count := 0
	for {
		tok := l.NextToken()
		count++
		printToken(tok)
		if tok.Type == token.EOF {
			break
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "lexed %d tokens\n", count)
	}
	return nil
}

func printToken(tok token.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-12s]", tok.Type)
	}
	if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Type)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}
