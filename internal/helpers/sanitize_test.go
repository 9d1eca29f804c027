package helpers

import "testing"

func TestSanitizeHTMLStrict(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"tags and scripts": {`<p>Rust <strong>ownership</strong><script>alert('x')</script></p>`, "Rust ownership"},
		"event handlers":   {`<img src=x onerror="alert(1)">Borrowing rules`, "Borrowing rules"},
		"blank":            {"   ", ""},
		"plain text":       {"  no markup  ", "no markup"},
	}
	for name, tc := range cases {
		if got := SanitizeHTMLStrict(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", name, got, tc.want)
		}
	}
}
