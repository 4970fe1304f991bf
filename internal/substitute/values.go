package substitute

import (
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
)

// ReplaceLiteral replaces every occurrence of literal in s. When replacement
// itself contains literal, positions where s already holds replacement are
// copied through unchanged, so applying a rule such as "${" -> "$${" twice
// has the same effect as applying it once.
func ReplaceLiteral(s, literal, replacement string) string {
	return replace(s, literal, replacement, guardsFor(literal, []string{replacement}))
}

// Text applies every rule to s in order. Text produced by any rule's
// replacement is not rewritten again by a later pass, so re-running the
// rules over their own output leaves it unchanged.
func Text(s string, rules []config.ValueRule) string {
	produced := make([]string, 0, len(rules))
	for _, r := range rules {
		produced = append(produced, r.Replacement)
	}

	for _, r := range rules {
		s = replace(s, r.Literal, r.Replacement, guardsFor(r.Literal, produced))
	}

	return s
}

// guardsFor returns the replacements containing literal, longest first.
func guardsFor(literal string, replacements []string) []string {
	if literal == "" {
		return nil
	}

	var guards []string

	for _, repl := range replacements {
		if repl != "" && strings.Contains(repl, literal) && !slices.Contains(guards, repl) {
			guards = append(guards, repl)
		}
	}

	sort.SliceStable(guards, func(i, j int) bool { return len(guards[i]) > len(guards[j]) })

	return guards
}

func replace(s, literal, replacement string, guards []string) string {
	if literal == "" || !strings.Contains(s, literal) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

scan:
	for i := 0; i < len(s); {
		rest := s[i:]

		for _, g := range guards {
			if strings.HasPrefix(rest, g) {
				b.WriteString(g)
				i += len(g)

				continue scan
			}
		}

		if strings.HasPrefix(rest, literal) {
			b.WriteString(replacement)
			i += len(literal)

			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

// Values applies the rules to every scalar value under node and returns the
// number of scalars changed.
func Values(node *yaml.Node, rules []config.ValueRule) int {
	if len(rules) == 0 {
		return 0
	}

	changed := 0

	bundle.WalkScalars(node, func(n *yaml.Node) {
		if n.Tag == "!!null" {
			return
		}

		if v := Text(n.Value, rules); v != n.Value {
			n.Value = v
			n.Tag = "!!str"
			changed++
		}
	})

	return changed
}
