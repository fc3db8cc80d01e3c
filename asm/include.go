package asm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/neptune-vm/neptune/vmerr"
)

// expandIncludes inlines the lines of any file named by a ".include
// \"path\"" directive, resolved relative to filename's directory.
// Includes are single-level: an included file containing its own
// .include is rejected as a BadArgument-class error rather than
// followed, which rules out cycles by construction.
func expandIncludes(lines []string, filename string, nested bool) ([]string, error) {
	dir := filepath.Dir(filename)
	out := make([]string, 0, len(lines))

	for i, raw := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(stripComment(raw))
		if !strings.HasPrefix(trimmed, ".include") {
			out = append(out, raw)
			continue
		}
		if nested {
			return nil, vmerr.Syntax(vmerr.BadArgument, filename, lineNum, "nested .include is not supported")
		}

		fields := strings.Fields(trimmed)
		if len(fields) != 2 {
			return nil, vmerr.Syntax(vmerr.BadSyntax, filename, lineNum, "malformed .include directive")
		}
		path := strings.Trim(fields[1], `"`)
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, vmerr.Syntax(vmerr.BadArgument, filename, lineNum, "cannot read included file %s: %v", path, err)
		}

		included, err := expandIncludes(strings.Split(string(data), "\n"), path, true)
		if err != nil {
			return nil, err
		}
		out = append(out, included...)
	}
	return out, nil
}
