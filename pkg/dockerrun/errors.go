package dockerrun

import (
	"errors"
	"slices"
	"strings"
)

// RootField is the path reported when the input itself is unusable.
const RootField = "(root)"

// ErrInvalidConfig is matched by every *ValidationError through errors.Is.
var ErrInvalidConfig = errors.New("invalid container configuration")

// ValidationError carries every violation found in a single input, keyed by
// field path (for example "name" or "ports[1].container").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	paths := e.Paths()
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+e.Fields[p])
	}
	return "invalid container configuration: " + strings.Join(parts, "; ")
}

// Is lets callers test with errors.Is(err, ErrInvalidConfig).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Paths returns the offending field paths in a stable order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// add records the first message for a path; later ones for the same path
// are ignored.
func (e *ValidationError) add(path, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[path]; exists {
		return
	}
	e.Fields[path] = msg
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
