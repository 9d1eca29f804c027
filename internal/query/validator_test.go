package query

import "testing"

func TestIsValid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want bool
	}{
		{"best hiking trails in utah", true},
		{"What is the address of the Louvre?", true},
		{"how are emails delivered", true},
		{"recalled products 2024", true},
		{"", false},
		{"   \t", false},
		{"walk the dog at 5", false},
		{"Remind me to call mom", false},
		{"SET   ALARM for 7am", false},
		{"buy milk", false},
		{"order pizza", false},
		{"add eggs to my list", false},
	}
	for _, tc := range cases {
		if got := IsValid(tc.in); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if (Validator{}).IsValid("walk") {
		t.Error("Validator should delegate to IsValid")
	}
}
