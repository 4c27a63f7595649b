// Statement tokenizer: quote-aware splitting with operator tokens.
package tabular

import (
	"fmt"
	"strings"
)

// token is one lexical unit of a statement. Quoted tokens are always literals.
type token struct {
	text   string
	quoted bool
}

// operator runes that terminate a bare word and form their own tokens.
// Two-rune operators (==, !=, >=, <=) are merged greedily.
const operatorRunes = "=!<>+-*/"

// tokenize splits a statement into tokens, honoring single and double quotes
// and backslash escapes inside them.
func tokenize(input string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inQuote rune
		escaped bool
		quoted  bool
	)

	flush := func() {
		if current.Len() == 0 && !quoted {
			return
		}
		tokens = append(tokens, token{text: current.String(), quoted: quoted})
		current.Reset()
		quoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case inQuote != 0:
			switch r {
			case '\\':
				escaped = true
			case inQuote:
				inQuote = 0
				flush()
			default:
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			flush()
			inQuote = r
			quoted = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case strings.ContainsRune(operatorRunes, r):
			flush()
			op := string(r)
			if i+1 < len(runes) && runes[i+1] == '=' && (r == '=' || r == '!' || r == '<' || r == '>') {
				op += "="
				i++
			}
			tokens = append(tokens, token{text: op})
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape in statement")
	}
	if inQuote != 0 {
		return nil, fmt.Errorf("unterminated quote in statement")
	}
	flush()

	return tokens, nil
}
