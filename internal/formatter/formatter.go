package formatter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Formatter normalizes emitted Dart source: grouped imports, no trailing
// whitespace, at most one blank line in a row and a single final newline.
// It refuses text whose brackets do not balance.
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

var (
	directiveRegex  = regexp.MustCompile(`^(import|export)\s+'([^']+)'.*;$`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// Format takes Dart code as a string and returns the normalized code
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	if err := checkBalance(code); err != nil {
		return "", fmt.Errorf("failed to format Dart code: %w", err)
	}

	result := f.trimTrailingWhitespace(code)
	result = f.formatImports(result)
	result = blankLinesRegex.ReplaceAllString(result, "\n\n")
	result = strings.TrimLeft(result, "\n")
	return strings.TrimRight(result, "\n") + "\n", nil
}

func (f *Formatter) trimTrailingWhitespace(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// formatImports rewrites the leading directive block: dart: imports first,
// then package: imports, then relative imports, then exports, each group
// sorted and separated by a blank line. Comment lines before the block are
// kept in place; a block interleaved with other code is left alone.
func (f *Formatter) formatImports(code string) string {
	lines := strings.Split(code, "\n")

	start, end := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if directiveRegex.MatchString(trimmed) {
			if start == -1 {
				start = i
			}
			end = i
			continue
		}
		if trimmed == "" || (start == -1 && strings.HasPrefix(trimmed, "//")) {
			continue
		}
		break
	}
	if start == -1 {
		return code
	}

	var dartImports, packageImports, relativeImports, exports []string
	seen := make(map[string]bool)
	for _, line := range lines[start : end+1] {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true

		m := directiveRegex.FindStringSubmatch(line)
		switch {
		case m[1] == "export":
			exports = append(exports, line)
		case strings.HasPrefix(m[2], "dart:"):
			dartImports = append(dartImports, line)
		case strings.HasPrefix(m[2], "package:"):
			packageImports = append(packageImports, line)
		default:
			relativeImports = append(relativeImports, line)
		}
	}

	var groups []string
	for _, group := range [][]string{dartImports, packageImports, relativeImports, exports} {
		if len(group) == 0 {
			continue
		}
		sort.Strings(group)
		groups = append(groups, strings.Join(group, "\n"))
	}

	block := strings.Join(groups, "\n\n")
	out := append([]string{}, lines[:start]...)
	out = append(out, block)
	return strings.Join(append(out, lines[end+1:]...), "\n")
}

// checkBalance verifies that (), [] and {} pair up outside string literals
// and comments.
func checkBalance(code string) error {
	var stack []rune
	line := 1
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}

	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n':
			line++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			i++
		case r == '\'' || r == '"':
			i++
			for i < len(runes) && runes[i] != r {
				if runes[i] == '\\' {
					i++
				} else if runes[i] == '\n' {
					return fmt.Errorf("unterminated string literal on line %d", line)
				}
				i++
			}
			if i >= len(runes) {
				return fmt.Errorf("unterminated string literal on line %d", line)
			}
		case r == '(' || r == '[' || r == '{':
			stack = append(stack, r)
		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Errorf("unbalanced %q on line %d", r, line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q at end of input", stack[len(stack)-1])
	}
	return nil
}
