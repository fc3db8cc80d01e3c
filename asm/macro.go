package asm

import (
	"strings"

	"github.com/neptune-vm/neptune/vmerr"
)

type macroDef struct {
	params []string
	body   []string
}

// expandMacros performs whole-word textual substitution of macro bodies
// at invocation sites, matching the ".macro name arg1 arg2 ... .endmacro"
// grammar. It returns a flat line list with all macro definitions removed
// and all invocations inlined.
func expandMacros(lines []string, filename string) ([]string, error) {
	macros := make(map[string]*macroDef)
	var out []string

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		fields := strings.Fields(line)

		if len(fields) > 0 && strings.EqualFold(fields[0], ".macro") {
			if len(fields) < 2 {
				return nil, vmerr.Syntax(vmerr.BadSyntax, filename, i+1, "malformed .macro directive")
			}
			name := fields[1]
			params := fields[2:]
			var body []string
			i++
			for i < len(lines) && !strings.EqualFold(strings.TrimSpace(lines[i]), ".endmacro") {
				body = append(body, lines[i])
				i++
			}
			if i >= len(lines) {
				return nil, vmerr.Syntax(vmerr.BadSyntax, filename, i+1, "unterminated .macro %s", name)
			}
			macros[name] = &macroDef{params: params, body: body}
			i++
			continue
		}

		if len(fields) > 0 {
			if m, ok := macros[fields[0]]; ok {
				args := splitArgs(strings.Join(fields[1:], " "))
				expanded, err := expandInvocation(m, args, filename, i+1)
				if err != nil {
					return nil, err
				}
				out = append(out, expanded...)
				i++
				continue
			}
		}

		out = append(out, lines[i])
		i++
	}
	return out, nil
}

func expandInvocation(m *macroDef, args []string, filename string, line int) ([]string, error) {
	if len(args) != len(m.params) {
		return nil, vmerr.Syntax(vmerr.BadArgument, filename, line, "macro expects %d arguments, got %d", len(m.params), len(args))
	}
	subst := make(map[string]string, len(m.params))
	for i, p := range m.params {
		subst[p] = args[i]
	}
	expanded := make([]string, len(m.body))
	for i, bodyLine := range m.body {
		expanded[i] = substituteWords(bodyLine, subst)
	}
	return expanded, nil
}

// substituteWords replaces whole-word occurrences of macro parameter
// names in line with their argument values.
func substituteWords(line string, subst map[string]string) string {
	var sb strings.Builder
	i := 0
	isWordChar := func(b byte) bool {
		return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
	}
	for i < len(line) {
		if !isWordChar(line[i]) {
			sb.WriteByte(line[i])
			i++
			continue
		}
		j := i
		for j < len(line) && isWordChar(line[j]) {
			j++
		}
		word := line[i:j]
		if repl, ok := subst[word]; ok {
			sb.WriteString(repl)
		} else {
			sb.WriteString(word)
		}
		i = j
	}
	return sb.String()
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
