package acquisition

import "testing"

func TestNext(t *testing.T) {
	t.Parallel()
	cases := []struct {
		from State
		in   Outcome
		want State
	}{
		{TryPrimary, Found, Fetching},
		{TryPrimary, Failed, TryFallback},
		{TryFallback, Found, Fetching},
		{TryFallback, Failed, Exhausted},
		{Exhausted, Found, Exhausted},
		{Fetching, Failed, Fetching},
	}
	for _, tc := range cases {
		if got := Next(tc.from, tc.in); got != tc.want {
			t.Errorf("Next(%s, %d) = %s, want %s", tc.from, tc.in, got, tc.want)
		}
	}
	if TryPrimary.Terminal() || TryFallback.Terminal() || !Exhausted.Terminal() || !Fetching.Terminal() {
		t.Error("unexpected Terminal result")
	}
}
