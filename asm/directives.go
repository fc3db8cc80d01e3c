package asm

import (
	"strconv"
	"strings"

	"github.com/neptune-vm/neptune/vmerr"
)

// dataDecl is one parsed .data section declaration: a string, a scalar
// word, a byte, a fixed-size array of words, or a zero-initialized
// buffer.
type dataDecl struct {
	kind string // "string", "int", "byte", "array", "buffer"
	name string
	line int

	size   int      // declared element count for array/buffer
	ints   []string // unresolved numeric tokens for int/array
	str    string    // decoded string body for "string"
	bVal   string    // unresolved numeric token for "byte"

	addr   uint32
	length uint32 // byte length this declaration occupies
}

// parseDataDecl recognizes one line inside a .data section.
func parseDataDecl(line string, lineNum int, filename string) (*dataDecl, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	switch strings.ToLower(fields[0]) {
	case "string":
		// string NAME = "literal"
		eq := strings.Index(line, "=")
		if eq == -1 || len(fields) < 2 {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed string declaration")
		}
		name := fields[1]
		body, ok := quotedString(line[eq:])
		if !ok {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "string declaration missing quoted literal")
		}
		decoded := unescapeString(body)
		return &dataDecl{kind: "string", name: name, str: decoded, line: lineNum,
			length: alignUp4(uint32(len(decoded) + 1))}, nil

	case "int", "word":
		eq := strings.Index(line, "=")
		if eq == -1 || len(fields) < 2 {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed %s declaration", fields[0])
		}
		name := fields[1]
		val := strings.TrimSpace(line[eq+1:])
		return &dataDecl{kind: "int", name: name, ints: []string{val}, line: lineNum, length: 4}, nil

	case "byte":
		eq := strings.Index(line, "=")
		if eq == -1 || len(fields) < 2 {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed byte declaration")
		}
		name := fields[1]
		val := strings.TrimSpace(line[eq+1:])
		return &dataDecl{kind: "byte", name: name, bVal: val, line: lineNum, length: alignUp4(1)}, nil

	case "array":
		// array NAME[SIZE] = v1, v2, ...
		open := strings.Index(line, "[")
		close := strings.Index(line, "]")
		eq := strings.Index(line, "=")
		if open == -1 || close == -1 || close < open || eq == -1 {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed array declaration")
		}
		name := strings.TrimSpace(line[len("array"):open])
		sizeTok := strings.TrimSpace(line[open+1 : close])
		size, err := strconv.Atoi(sizeTok)
		if err != nil {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "invalid array size: %s", sizeTok)
		}
		rest := strings.TrimSpace(line[eq+1:])
		var vals []string
		if rest != "" {
			for _, v := range strings.Split(rest, ",") {
				vals = append(vals, strings.TrimSpace(v))
			}
		}
		if len(vals) > size {
			return nil, vmerr.Syntax(vmerr.BadArgument, filename, lineNum, "array %s: too many initializers (%d > %d)", name, len(vals), size)
		}
		return &dataDecl{kind: "array", name: name, ints: vals, size: size, line: lineNum, length: uint32(size) * 4}, nil

	case "buffer":
		open := strings.Index(line, "[")
		close := strings.Index(line, "]")
		if open == -1 || close == -1 || close < open {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed buffer declaration")
		}
		name := strings.TrimSpace(line[len("buffer"):open])
		sizeTok := strings.TrimSpace(line[open+1 : close])
		size, err := strconv.Atoi(sizeTok)
		if err != nil {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "invalid buffer size: %s", sizeTok)
		}
		return &dataDecl{kind: "buffer", name: name, size: size, line: lineNum, length: alignUp4(uint32(size))}, nil

	default:
		return nil, vmerr.Syntax(vmerr.UnknownDirective, filename, lineNum, "unknown data declaration: %s", fields[0])
	}
}
