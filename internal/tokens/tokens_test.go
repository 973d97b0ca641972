package tokens

import "testing"

func TestApproximate(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		"":          0,
		"a":         1,
		"abcd":      1,
		"abcde":     2,
		"世界世界世界世界": 2,
	}
	for in, want := range cases {
		if got := Approximate(in); got != want {
			t.Fatalf("Approximate(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestCounter_DisabledEncodingApproximates(t *testing.T) {
	t.Parallel()
	for _, enc := range []string{"", "none"} {
		c := New(enc, nil)
		if got := c.Encoding(); got != "approx" {
			t.Fatalf("Encoding() = %q, want approx", got)
		}
		if got, want := c.Count("twelve chars"), Approximate("twelve chars"); got != want {
			t.Fatalf("Count() = %d, want %d", got, want)
		}
	}
}

func TestCounter_NilIsUsable(t *testing.T) {
	t.Parallel()
	var c *Counter
	if got := c.Count("abcdefgh"); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
}

func TestCounter_UnknownEncodingFallsBack(t *testing.T) {
	t.Parallel()
	c := New("no_such_encoding", nil)
	if got := c.Count("abcdefgh"); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
	if got := c.Encoding(); got != "approx" {
		t.Fatalf("Encoding() = %q, want approx", got)
	}
}
