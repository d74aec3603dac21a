package stem

import "testing"

func TestStem(t *testing.T) {
	st := New()
	cases := []struct {
		in   string
		want string
	}{
		{"spiders", "spider"},
		{"Spider", "spider"},
		{"spider!", "spider"},
		{"(spiders)", "spider"},
		{"running", "run"},
		{"", ""},
		{"...", ""},
	}
	for _, c := range cases {
		if got := st.Stem(c.in); got != c.want {
			t.Errorf("Stem(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStemIdempotent(t *testing.T) {
	st := New()
	for _, w := range []string{"spiders", "needles", "falling"} {
		once := st.Stem(w)
		if again := st.Stem(once); again != once {
			t.Errorf("Stem(Stem(%q)) = %q, want %q", w, again, once)
		}
	}
}
