package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "valc",
	Short: "valc compiles valc source to textual LLVM-IR",
	Long: `valc is a small, statically-typed scripting language that compiles
to textual LLVM-IR against a tiny reference-counted C runtime.

Pipeline stages are exposed as subcommands so each one can be inspected
on its own:
  - lex    tokenize a source file and print the token stream
  - parse  parse a source file and print its re-serialized AST
  - check  run semantic analysis and report type/resolve errors
  - build  run the full pipeline and emit LLVM-IR`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// readInput resolves a command's input source: the named file, or stdin
// when no file argument is given.
func readInput(args []string) (input, filename string, err error) {
	if len(args) == 1 {
		filename = args[0]
		content, readErr := os.ReadFile(filename)
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", filename, readErr)
		}
		return string(content), filename, nil
	}

	filename = "<stdin>"
	content, readErr := io.ReadAll(os.Stdin)
	if readErr != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", readErr)
	}
	return string(content), filename, nil
}
