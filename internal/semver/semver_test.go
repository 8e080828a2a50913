package semver

import "testing"

func TestParse(t *testing.T) {
	v, ok := Parse("1.2.3")
	if !ok || v != (Version{1, 2, 3, ""}) {
		t.Errorf("Parse(1.2.3) = %+v, %v", v, ok)
	}

	v, ok = Parse("1.2.3-beta")
	if !ok || v.Special != "-beta" {
		t.Errorf("Parse(1.2.3-beta) = %+v, %v", v, ok)
	}

	v, ok = Parse("v2.0.0")
	if !ok || v.Major != 2 {
		t.Errorf("Parse(v2.0.0) = %+v, %v", v, ok)
	}
}

func TestCaretMatching(t *testing.T) {
	cases := []struct {
		v    string
		want bool
	}{
		{"1.0.0", true},
		{"1.0.1", true},
		{"1.1.0", true},
		{"1.9.9", true},
		{"2.0.0", false},
		{"0.9.9", false},
	}
	for _, c := range cases {
		if got := Match(c.v, "^1.0.0"); got != c.want {
			t.Errorf("Match(%q, ^1.0.0) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestTildeMatching(t *testing.T) {
	cases := []struct {
		v    string
		want bool
	}{
		{"1.2.0", true},
		{"1.2.1", true},
		{"1.2.9", true},
		{"1.3.0", false},
		{"1.1.9", false},
	}
	for _, c := range cases {
		if got := Match(c.v, "~1.2.0"); got != c.want {
			t.Errorf("Match(%q, ~1.2.0) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestExactMatching(t *testing.T) {
	if !Match("1.2.3", "1.2.3") {
		t.Error("expected exact match")
	}
	if Match("1.2.4", "1.2.3") || Match("1.3.3", "1.2.3") {
		t.Error("unexpected exact match")
	}
}

func TestWildcard(t *testing.T) {
	if !Match("1.2.3", "*") || !Match("99.99.99", "*") {
		t.Error("* should always match")
	}
}

func TestOrOperator(t *testing.T) {
	if !Match("1.0.0", "^1.0.0 || ^2.0.0") {
		t.Error("expected match on first alternative")
	}
	if !Match("2.0.0", "^1.0.0 || ^2.0.0") {
		t.Error("expected match on second alternative")
	}
	if Match("3.0.0", "^1.0.0 || ^2.0.0") {
		t.Error("expected no match")
	}
}

func TestWildcardPatterns(t *testing.T) {
	if !Match("4.0.0", "4.x") || !Match("4.1.2", "4.x") || !Match("4.99.99", "4.x") {
		t.Error("expected 4.x matches")
	}
	if Match("5.0.0", "4.x") || Match("3.99.99", "4.x") {
		t.Error("unexpected 4.x matches")
	}

	if !Match("3.0.0", "3.X") || !Match("3.5.7", "3.X") {
		t.Error("expected 3.X matches")
	}
	if Match("4.0.0", "3.X") {
		t.Error("unexpected 3.X match")
	}

	if !Match("1.2.0", "1.2.x") || !Match("1.2.5", "1.2.x") || !Match("1.2.99", "1.2.x") {
		t.Error("expected 1.2.x matches")
	}
	if Match("1.3.0", "1.2.x") || Match("2.2.0", "1.2.x") {
		t.Error("unexpected 1.2.x matches")
	}

	if !Match("1.2.3", "x.x.x") || !Match("99.88.77", "x.x.x") {
		t.Error("expected x.x.x to match everything")
	}

	if !Match("2.3.4", "2.X.x") {
		t.Error("expected mixed-case wildcard match")
	}
}

func TestCaretStricterThanTildeInvariant(t *testing.T) {
	// match(v, "^v") does not imply match(v, "~v"): tilde is stricter.
	if !Match("1.1.0", "^1.0.0") {
		t.Fatal("expected caret match")
	}
	if Match("1.1.0", "~1.0.0") {
		t.Error("tilde should be stricter than caret for a minor bump")
	}
}

func TestMatchSelf(t *testing.T) {
	for _, v := range []string{"1.2.3", "0.0.1", "10.20.30"} {
		if !Match(v, v) {
			t.Errorf("Match(%q, %q) = false, want true", v, v)
		}
	}
}
