// Package config holds the keyword→script bindings parsed from the command
// line. Bindings are immutable after startup; their declaration order is
// significant (the matcher breaks similarity ties in favour of the earliest
// binding).
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Binding ties one keyword to exactly one executable script.
type Binding struct {
	Keyword string
	Script  string
}

// ParseBindings parses "keyword:script" pairs. Relative script paths are
// prefixed with "./" so exec resolves them against the working directory
// instead of PATH.
func ParseBindings(pairs []string) ([]Binding, error) {
	var bindings []Binding
	seen := make(map[string]bool)
	for _, pair := range pairs {
		keyword, script, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid binding %q (use keyword:script.sh)", pair)
		}
		keyword = strings.TrimSpace(keyword)
		script = strings.TrimSpace(script)
		if keyword == "" || script == "" {
			return nil, fmt.Errorf("invalid binding %q: empty keyword or script", pair)
		}
		if seen[keyword] {
			return nil, fmt.Errorf("duplicate keyword %q", keyword)
		}
		seen[keyword] = true
		if !filepath.IsAbs(script) && !strings.HasPrefix(script, "./") && !strings.HasPrefix(script, "../") {
			script = "./" + script
		}
		bindings = append(bindings, Binding{Keyword: keyword, Script: script})
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("no keyword bindings configured")
	}
	return bindings, nil
}

// Keywords returns the keyword names in declaration order.
func Keywords(bindings []Binding) []string {
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Keyword
	}
	return names
}
