package preprocessor

import "strings"

// lexState represents the current state of the comment stripper.
type lexState int

const (
	stateNormal lexState = iota
	stateLineComment
	stateBlockComment
	stateSingleQuote
	stateDollarQuote
)

// StripComments removes SQL comments while preserving string literals.
// Handles:
//   - Single-line comments: -- to end of line (newline preserved)
//   - Block comments: /* */ with PostgreSQL nesting support
//   - Single-quoted strings: '...' with '' escape
//   - Dollar-quoted strings: $$...$$ and $tag$...$tag$
//
// Stripped comment bodies are replaced with a single space so token
// boundaries survive (SELECT/*x*/1 must not become SELECT1).
func StripComments(sql string) string {
	if len(sql) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(sql))

	state := stateNormal
	blockDepth := 0
	dollarTag := ""
	i := 0

	for i < len(sql) {
		ch := sql[i]
		var next byte
		if i+1 < len(sql) {
			next = sql[i+1]
		}

		switch state {
		case stateNormal:
			if ch == '-' && next == '-' {
				state = stateLineComment
				b.WriteByte(' ')
				i += 2
			} else if ch == '/' && next == '*' {
				state = stateBlockComment
				blockDepth = 1
				b.WriteByte(' ')
				i += 2
			} else if ch == '\'' {
				state = stateSingleQuote
				b.WriteByte(ch)
				i++
			} else if ch == '$' {
				tag := extractDollarTag(sql, i)
				if tag != "" {
					state = stateDollarQuote
					dollarTag = tag
					b.WriteString(tag)
					i += len(tag)
				} else {
					b.WriteByte(ch)
					i++
				}
			} else {
				b.WriteByte(ch)
				i++
			}

		case stateLineComment:
			if ch == '\n' {
				b.WriteByte(ch)
				state = stateNormal
			}
			i++

		case stateBlockComment:
			if ch == '/' && next == '*' {
				blockDepth++
				i += 2
			} else if ch == '*' && next == '/' {
				blockDepth--
				i += 2
				if blockDepth == 0 {
					state = stateNormal
				}
			} else {
				if ch == '\n' {
					b.WriteByte(ch)
				}
				i++
			}

		case stateSingleQuote:
			b.WriteByte(ch)
			if ch == '\'' {
				if next == '\'' {
					b.WriteByte(next)
					i += 2
				} else {
					state = stateNormal
					i++
				}
			} else {
				i++
			}

		case stateDollarQuote:
			if matchesTag(sql, i, dollarTag) {
				b.WriteString(dollarTag)
				i += len(dollarTag)
				state = stateNormal
				dollarTag = ""
			} else {
				b.WriteByte(ch)
				i++
			}
		}
	}

	return b.String()
}

// extractDollarTag extracts a dollar-quote tag (e.g., "$$" or "$tag$")
// starting at position i. Returns empty string if not a valid tag.
func extractDollarTag(s string, i int) string {
	if i >= len(s) || s[i] != '$' {
		return ""
	}

	j := i + 1
	for j < len(s) {
		ch := s[j]
		if ch == '$' {
			return s[i : j+1]
		}
		if j == i+1 {
			if !isTagStart(ch) {
				return ""
			}
		} else if !isTagContinue(ch) {
			return ""
		}
		j++
	}

	return ""
}

func isTagStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isTagContinue(ch byte) bool {
	return isTagStart(ch) || (ch >= '0' && ch <= '9')
}

// matchesTag checks if the string at position i starts with the given tag.
func matchesTag(s string, i int, tag string) bool {
	if i+len(tag) > len(s) {
		return false
	}
	return s[i:i+len(tag)] == tag
}
