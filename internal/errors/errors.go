// Package errors formats compiler diagnostics with source context, line and
// column information, and a caret pointing at the offending position.
package errors

import (
	"fmt"
	"strings"

	"github.com/valc-lang/valc/internal/token"
)

// Kind classifies a CompilerError per the error taxonomy: LexError,
// ParseError, ResolveError, TypeError, InternalError. RuntimeAssert is
// produced only by emitted programs, never by the compiler, so it has no
// Kind value here.
type Kind int

const (
	LexError Kind = iota
	ParseError
	ResolveError
	TypeError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case ResolveError:
		return "ResolveError"
	case TypeError:
		return "TypeError"
	case InternalError:
		return "InternalError"
	default:
		return "Error"
	}
}

// CompilerError is a single fatal diagnostic: what kind it is, where it
// happened, and the source text to render a caret against.
type CompilerError struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// New constructs a CompilerError.
func New(kind Kind, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a one-line source excerpt and a caret under
// the offending column. color enables ANSI highlighting.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column))
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

// FormatWithContext is like Format but surrounds the offending line with
// contextLines of source on either side.
func (e *CompilerError) FormatWithContext(contextLines int, color bool) string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column))
	}

	ctx, startLine := e.sourceContext(e.Pos.Line, contextLines, contextLines)
	if len(ctx) == 0 {
		return e.Format(color)
	}

	for i, line := range ctx {
		currentLine := startLine + i
		lineNumStr := fmt.Sprintf("%4d | ", currentLine)
		if currentLine == e.Pos.Line {
			if color {
				sb.WriteString("\033[1m")
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		} else {
			if color {
				sb.WriteString("\033[2m")
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func (e *CompilerError) sourceContext(lineNum, before, after int) ([]string, int) {
	if e.Source == "" {
		return nil, 0
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return nil, 0
	}
	start := lineNum - before
	if start < 1 {
		start = 1
	}
	end := lineNum + after
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start-1 : end], start
}

// FormatErrors renders a batch of errors. The driver reports the first
// fatal diagnostic per spec §7, but a conformant implementation may
// continue collecting more for a single report like this one.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("compilation failed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(errs)))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
