package corpus

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Identity locates a function inside the original problem corpus. It is
// derived from program file names of the form
// <problem>_<solution>[_stripped]_<function>_<start>_<end>.<ext>.
type Identity struct {
	Problem   string
	Solution  string
	Function  string
	StartLine int
	EndLine   int
}

// String returns the canonical identity with the stripped marker removed.
func (identity Identity) String() string {
	return fmt.Sprintf("%s_%s_%s_%d_%d",
		identity.Problem, identity.Solution, identity.Function,
		identity.StartLine, identity.EndLine)
}

// ParseProgramFilename derives the identity encoded in a program file name.
// Directories and the extension are ignored, as is an optional "stripped"
// marker after the solution token.
func ParseProgramFilename(name string) (Identity, error) {
	base := path.Base(filepath.ToSlash(name))
	base = strings.TrimSuffix(base, path.Ext(base))
	parts := strings.Split(base, "_")
	if len(parts) < 5 {
		return Identity{}, fmt.Errorf("program file name %q: want <problem>_<solution>[_stripped]_<function>_<start>_<end>", name)
	}
	identity := Identity{Problem: parts[0], Solution: parts[1]}
	rest := parts[2:]
	if rest[0] == "stripped" {
		rest = rest[1:]
	}
	if len(rest) < 3 {
		return Identity{}, fmt.Errorf("program file name %q: missing function or line tokens", name)
	}
	start, err := strconv.Atoi(rest[len(rest)-2])
	if err != nil {
		return Identity{}, fmt.Errorf("program file name %q: start line %q is not a number", name, rest[len(rest)-2])
	}
	end, err := strconv.Atoi(rest[len(rest)-1])
	if err != nil {
		return Identity{}, fmt.Errorf("program file name %q: end line %q is not a number", name, rest[len(rest)-1])
	}
	if start < 1 || end < start {
		return Identity{}, fmt.Errorf("program file name %q: invalid line window %d..%d", name, start, end)
	}
	identity.Function = strings.Join(rest[:len(rest)-2], "_")
	identity.StartLine = start
	identity.EndLine = end
	if identity.Problem == "" || identity.Solution == "" || identity.Function == "" {
		return Identity{}, fmt.Errorf("program file name %q: empty identity token", name)
	}
	return identity, nil
}
