package dockerrun

import (
	"fmt"
	"strings"
	"unicode"
)

// BaseInvocation starts every rendered command.
const BaseInvocation = "docker run -d"

const (
	continuation = " \\\n"
	indent       = "  "
)

// Mode selects the output layout.
type Mode int

const (
	// Compact renders the whole command on one line.
	Compact Mode = iota
	// Multiline puts each flag group on its own backslash-continued line.
	Multiline
)

func (m Mode) String() string {
	switch m {
	case Compact:
		return "compact"
	case Multiline:
		return "multiline"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps "compact" or "multiline" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact":
		return Compact, nil
	case "multiline":
		return Multiline, nil
	}
	return Compact, fmt.Errorf("unknown render mode %q (want compact or multiline)", s)
}

// Render builds the token groups for cfg and renders them with its image
// reference. Same input, same output.
func Render(cfg Config, mode Mode) string {
	return RenderGroups(BuildTokens(cfg), cfg.ImageRef(), mode)
}

// RenderGroups assembles groups and the terminal image reference into
// command text. It never fails.
func RenderGroups(groups []FlagGroup, image string, mode Mode) string {
	if mode == Multiline {
		return renderMultiline(groups, image)
	}
	words := []string{BaseInvocation}
	for _, g := range groups {
		words = append(words, groupText(g))
	}
	words = append(words, Quote(image))
	return strings.Join(words, " ")
}

func renderMultiline(groups []FlagGroup, image string) string {
	first := []string{BaseInvocation}
	i := 0
	for ; i < len(groups) && groups[i].Section == SectionIdentity; i++ {
		first = append(first, groupText(groups[i]))
	}

	lines := []string{strings.Join(first, " ")}
	rest := groups[i:]
	for j := 0; j < len(rest); j++ {
		text := groupText(rest[j])
		// A bare extra flag keeps its value on the same line.
		if rest[j].Section == SectionExtra && j+1 < len(rest) && rest[j+1].Section == SectionExtra &&
			isFlag(text) && !isFlag(groupText(rest[j+1])) {
			text += " " + groupText(rest[j+1])
			j++
		}
		lines = append(lines, indent+text)
	}
	lines = append(lines, indent+Quote(image))
	return strings.Join(lines, continuation)
}

func groupText(g FlagGroup) string {
	words := make([]string, 0, len(g.Tokens))
	for _, t := range g.Tokens {
		if t.Verbatim {
			words = append(words, t.Text)
			continue
		}
		words = append(words, Quote(t.Text))
	}
	return strings.Join(words, " ")
}

func isFlag(s string) bool {
	return strings.HasPrefix(s, "-")
}

// Quote wraps s in double quotes, escaping embedded double quotes, when s
// contains whitespace. Other strings are returned unchanged.
func Quote(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	return forceQuote(s)
}

func forceQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
