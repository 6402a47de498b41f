package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the commands accepted after the ':' prefix.
var ctrlCommands = []string{":clear", ":edit", ":fmt", ":help", ":quit", ":vars"}

// keywords complete alongside function and variable names.
var keywords = []string{"false", "null", "true"}

// isWordRune reports whether r continues a completion word. Function names
// may contain dots (file.exists), so '.' is part of a word.
func isWordRune(r rune) bool {
	return r == '_' || r == '$' || r == '.' || r == ':' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. Returns an empty word when the cursor sits between two non-word
// runes.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether the byte offset pos of input falls inside a
// string or template literal.
func inString(input string, pos int) bool {
	var quote byte

	for i := 0; i < pos && i < len(input); i++ {
		c := input[i]

		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\'' || c == '`'):
			quote = c
		}
	}

	return quote != 0
}

// candidates returns the completion candidates for mode, sorted and without
// duplicates.
func (m model) candidates(mode inputMode) []string {
	if mode == modeCtrl {
		return ctrlCommands
	}

	names := slices.Concat(m.cfg.Env.Functions(), m.vars, keywords)
	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns nil matches for an empty word, for a word inside a
// string literal, and for a command argument.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, ws, we := wordBounds(input, m.input.Position())

	mode := modeOf(input)
	switch {
	case word == "":
		return nil, ws, we
	case mode == modeCtrl && ws > 0:
		return nil, ws, we
	case mode == modeEval && inString(input, ws):
		return nil, ws, we
	}

	return fuzzy.Find(word, m.candidates(mode)), ws, we
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunc(match.Str))
		entryWidth := lipgloss.Width(rendered)

		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	next := 0

	for i, r := range match.Str {
		style := base
		if next < len(match.MatchedIndexes) && match.MatchedIndexes[next] == i {
			style = highlight
			next++
		}

		b.WriteString(style.Render(string(r)))
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
