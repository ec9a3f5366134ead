package config

import "testing"

func TestParseBindings(t *testing.T) {
	bindings, err := ParseBindings([]string{"browser:browser.sh", "jupiter:./jupyter.sh"})
	if err != nil {
		t.Fatalf("ParseBindings: %v", err)
	}
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].Keyword != "browser" || bindings[0].Script != "./browser.sh" {
		t.Errorf("relative path not prefixed: %+v", bindings[0])
	}
	if bindings[1].Script != "./jupyter.sh" {
		t.Errorf("already-prefixed path changed: %+v", bindings[1])
	}
}

func TestParseBindingsOrderPreserved(t *testing.T) {
	bindings, err := ParseBindings([]string{"c:c.sh", "a:a.sh", "b:b.sh"})
	if err != nil {
		t.Fatalf("ParseBindings: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i, kw := range Keywords(bindings) {
		if kw != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, kw, want[i])
		}
	}
}

func TestParseBindingsAbsolutePath(t *testing.T) {
	bindings, err := ParseBindings([]string{"update:/usr/local/bin/update.sh"})
	if err != nil {
		t.Fatalf("ParseBindings: %v", err)
	}
	if bindings[0].Script != "/usr/local/bin/update.sh" {
		t.Errorf("absolute path changed: %q", bindings[0].Script)
	}
}

func TestParseBindingsErrors(t *testing.T) {
	for _, tt := range []struct {
		name  string
		pairs []string
	}{
		{"missing colon", []string{"browser"}},
		{"empty keyword", []string{":x.sh"}},
		{"empty script", []string{"browser:"}},
		{"duplicate keyword", []string{"a:a.sh", "a:b.sh"}},
		{"no bindings", nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBindings(tt.pairs); err == nil {
				t.Errorf("expected error for %v", tt.pairs)
			}
		})
	}
}
