package asm

import (
	"strconv"
	"strings"
)

// registerAliases maps the reserved PC/SP/HP names onto their register
// indices; general registers are named r0..rN-1, case-insensitively.
var registerAliases = map[string]byte{
	"pc": 252,
	"sp": 253,
	"hp": 254,
}

// parseRegister recognizes r0..rN-1 (case-insensitive) and the pc/sp/hp
// aliases.
func parseRegister(tok string) (byte, bool) {
	low := strings.ToLower(strings.TrimSpace(tok))
	if reg, ok := registerAliases[low]; ok {
		return reg, true
	}
	if !strings.HasPrefix(low, "r") || len(low) < 2 {
		return 0, false
	}
	n, err := strconv.ParseUint(low[1:], 10, 8)
	if err != nil {
		return 0, false
	}
	return byte(n), true
}

// parseNumericLiteral parses 0x-hex (unsigned), 0b-binary, or decimal
// signed literals, per the grammar's numeric literal rules.
func parseNumericLiteral(tok string) (int64, bool) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, false
	}
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		v, err := strconv.ParseUint(tok[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		v, err := strconv.ParseUint(tok[2:], 2, 64)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	default:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

// stripComment removes a trailing ';' or '#' comment from a line, honoring
// neither as a comment marker inside a double-quoted string.
func stripComment(line string) string {
	inString := false
	for i, r := range line {
		switch r {
		case '"':
			inString = !inString
		case ';', '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// unescapeString processes \n \t \r \\ \" \0 escapes inside a string
// declaration's literal body.
func unescapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// quotedString extracts the body of the first "..." literal in line.
func quotedString(line string) (string, bool) {
	start := strings.Index(line, "\"")
	if start == -1 {
		return "", false
	}
	end := -1
	for i := start + 1; i < len(line); i++ {
		if line[i] == '"' && line[i-1] != '\\' {
			end = i
			break
		}
	}
	if end == -1 {
		return "", false
	}
	return line[start+1 : end], true
}

func alignUp4(n uint32) uint32 { return (n + 3) &^ 3 }
