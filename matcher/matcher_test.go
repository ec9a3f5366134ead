package matcher

import (
	"testing"

	"horch/config"
)

func testMatcher(t *testing.T, keywords ...string) *Matcher {
	t.Helper()
	bindings := make([]config.Binding, len(keywords))
	for i, kw := range keywords {
		bindings[i] = config.Binding{Keyword: kw, Script: "./" + kw + ".sh"}
	}
	return New(bindings, DefaultThreshold)
}

func TestNormalize(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"Browser", "browser"},
		{"  Jupyter!  ", "jupyter"},
		{"Grüße", "gruesse"},
		{"schließen", "schliessen"},
		{"Öffnen", "oeffnen"},
		{"Ärger", "aerger"},
		{"café", "cafe"},
		{"up-date", "update"},
		{"...", ""},
	} {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIdenticalTokenScoresOne(t *testing.T) {
	m := testMatcher(t, "browser")
	match, ok := m.Match("browser")
	if !ok {
		t.Fatal("identical token did not match")
	}
	if match.Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0", match.Similarity)
	}
}

func TestFuzzyMatchJupiter(t *testing.T) {
	m := testMatcher(t, "browser", "jupyter")
	match, ok := m.Match("jupiter")
	if !ok {
		t.Fatal("jupiter did not match jupyter at default threshold")
	}
	if match.Keyword != "jupyter" {
		t.Errorf("matched %q, want jupyter", match.Keyword)
	}
	if match.Similarity < DefaultThreshold || match.Similarity > 1.0 {
		t.Errorf("similarity %v out of [%v, 1.0]", match.Similarity, DefaultThreshold)
	}
	if match.Script != "./jupyter.sh" {
		t.Errorf("script = %q", match.Script)
	}
}

func TestNoMatchBelowThreshold(t *testing.T) {
	m := testMatcher(t, "browser", "jupyter")
	for _, token := range []string{"hello", "world", "xylophon", ""} {
		if match, ok := m.Match(token); ok {
			t.Errorf("token %q matched %q (%.3f)", token, match.Keyword, match.Similarity)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	m := testMatcher(t, "a", "browser", "systemupdate")
	for _, token := range []string{"a", "b", "browsr", "systemupdates", "zzzzzz"} {
		if match, ok := m.Match(token); ok {
			if match.Similarity < 0 || match.Similarity > 1 {
				t.Errorf("similarity for %q out of bounds: %v", token, match.Similarity)
			}
		}
	}
}

func TestTieBreakConfigurationOrder(t *testing.T) {
	// "aaab" and "aaac" are symmetric around "aaad": equal similarity,
	// so the earlier binding must win.
	m := testMatcher(t, "aaab", "aaac")
	match, ok := m.Match("aaad")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Keyword != "aaab" {
		t.Errorf("tie broke to %q, want aaab (configured first)", match.Keyword)
	}

	// Reversed configuration order flips the winner.
	m = testMatcher(t, "aaac", "aaab")
	match, ok = m.Match("aaad")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Keyword != "aaac" {
		t.Errorf("tie broke to %q, want aaac (configured first)", match.Keyword)
	}
}

func TestMatchNormalizesKeywordAndToken(t *testing.T) {
	m := testMatcher(t, "Größe")
	if _, ok := m.Match("groesse"); !ok {
		t.Error("umlaut keyword did not match folded token")
	}
}
