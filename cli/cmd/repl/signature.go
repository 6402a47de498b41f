package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/formula/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name (e.g., "path.join")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's parameter list. Parentheses, brackets and braces nest;
// delimiters inside string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	// Scan backward for the innermost unclosed '('.
	depth := 0
	open := -1

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		if inString(input, i) {
			continue
		}

		switch input[i] {
		case ')', ']', '}':
			depth++
		case '[', '{':
			depth--
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}

		if depth < 0 {
			// Cursor is inside an array or object literal nested in no call.
			return functionCall{}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) || r == ':' {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		if inString(input, i) {
			continue
		}

		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// signatureOf returns the display signature of name and its parameter
// names. Functions without a documented signature show as name(...).
func signatureOf(env *lang.Env, name string) (signature string, params []string) {
	if sig, ok := lang.Signature(name); ok {
		return sig, paramsOf(sig)
	}

	if _, ok := env.Function(name); ok {
		return name + "(...)", []string{"..."}
	}

	return "", nil
}

// paramsOf extracts the parameter names from a signature such as
// "slice(value, start, end?) value".
func paramsOf(signature string) []string {
	open := strings.IndexByte(signature, '(')
	closing := strings.LastIndexByte(signature, ')')

	if open < 0 || closing < open {
		return nil
	}

	list := strings.TrimSpace(signature[open+1 : closing])
	if list == "" {
		return nil
	}

	params := strings.Split(list, ",")
	for i, p := range params {
		params[i] = strings.TrimSpace(p)
	}

	return params
}

// isVariadic reports whether a parameter absorbs all remaining arguments.
func isVariadic(param string) bool {
	return param == "..." || strings.HasSuffix(param, "...")
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(signature string, params []string, current int) string {
	open := strings.IndexByte(signature, '(')
	closing := strings.LastIndexByte(signature, ')')

	if open < 0 || closing < open {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(signature[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current || (isVariadic(param) && current >= i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(signature[closing:]))

	return b.String()
}
