package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string // normalized
	}{
		{"1.0.0", "1.0.0"},
		{"1.2", "1.2.0"},
		{"1", "1.0.0"},
		{"1.2.3.4", "1.2.3.4"},
		{"1.2.3.0", "1.2.3"},
		{"v2.1.0", "2.1.0"},
		{"1.0.0-Beta.1", "1.0.0-beta.1"},
		{"1.0.0-rc.2+build.5", "1.0.0-rc.2"},
		{"0.0.1", "0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got := v.Normalize(); got != tt.want {
				t.Errorf("Parse(%q).Normalize() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3.4.5", "1.-2", "1.2.3-", "01.2.3"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", input)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-ALPHA", "1.0.0-alpha", 0},
		{"1.0.0-alpha.2", "1.0.0-alpha.10", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha.beta", -1},
		{"1.0.0-rc.1", "1.0.0-rc.1.1", -1},
		{"1.0.0+one", "1.0.0+two", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := b.Compare(a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestIsPrerelease(t *testing.T) {
	if MustParse("1.0.0").IsPrerelease() {
		t.Error("1.0.0 should not be prerelease")
	}
	if !MustParse("1.0.0-rc.1").IsPrerelease() {
		t.Error("1.0.0-rc.1 should be prerelease")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		in, out []string
	}{
		{"1.0.0", []string{"1.0.0", "1.5.0", "99.0.0"}, []string{"0.9.0"}},
		{"[1.2.3]", []string{"1.2.3", "1.2.3+meta"}, []string{"1.2.2", "1.2.4"}},
		{"[1.0,2.0)", []string{"1.0.0", "1.9.9"}, []string{"0.9.0", "2.0.0"}},
		{"(1.0,2.0]", []string{"1.0.1", "2.0.0"}, []string{"1.0.0", "2.0.1"}},
		{"(,2.0]", []string{"0.1.0", "2.0.0"}, []string{"2.0.1"}},
		{"[3.0,)", []string{"3.0.0", "4.0.0"}, []string{"2.9.9"}},
		{"1.2.*", []string{"1.2.0", "1.2.9"}, []string{"1.1.9"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange(%q) failed: %v", tt.input, err)
			}
			for _, s := range tt.in {
				if !r.Satisfies(MustParse(s)) {
					t.Errorf("%q should satisfy %q", s, tt.input)
				}
			}
			for _, s := range tt.out {
				if r.Satisfies(MustParse(s)) {
					t.Errorf("%q should not satisfy %q", s, tt.input)
				}
			}
			if got := r.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, input := range []string{"", "[1.0", "[2.0,1.0]", "[,]", "[1.0,2.0,3.0]", "(1.0)", "1.*.2"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseRange(input); err == nil {
				t.Errorf("ParseRange(%q) succeeded, want error", input)
			}
		})
	}
}
