package names

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Start  ", "Start"},
		{"A   B", "A B"},
		{"A\tB\nC", "A B C"},
		{`Say \"hi\"`, `Say "hi"`},
		{`C:\\\\path`, `C:\\path`},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("  A   B ", "A B") {
		t.Error("expected collision after whitespace normalization")
	}
	if Equal("A", "B") {
		t.Error("did not expect collision")
	}
}
