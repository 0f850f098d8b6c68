package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	errSyntax   = errors.New("syntax error")
	errOperator = errors.New("unsupported operator")
)

// split breaks an expression into stages separated by '|', and every stage
// into words using shell quoting rules: single and double quotes group words
// and protect '|', a backslash escapes the next character.
//
// An expression made only of whitespace has no stages. Empty stages are
// returned as nil for the caller to reject.
func split(expr string) ([][]string, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var segments [][]string
	rest := []rune(expr)
	for {
		p := shellwords.NewParser()
		words, err := p.Parse(string(rest))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errSyntax, err)
		}
		if len(words) == 0 {
			words = nil
		}
		segments = append(segments, words)

		if p.Position < 0 {
			return segments, nil
		}
		if op := rest[p.Position]; op != '|' {
			return nil, fmt.Errorf("%w %q", errOperator, op)
		}
		rest = rest[p.Position+1:]
	}
}
