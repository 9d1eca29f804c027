package acquisition

// State is a step of the provider fallback machine.
type State int

const (
	TryPrimary State = iota
	TryFallback
	Exhausted
	// Fetching is entered as soon as a provider yields at least one URL.
	Fetching
)

func (s State) String() string {
	switch s {
	case TryPrimary:
		return "try_primary"
	case TryFallback:
		return "try_fallback"
	case Exhausted:
		return "exhausted"
	case Fetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// Outcome is what a search attempt produced.
type Outcome int

const (
	// Found means the attempt produced at least one usable URL.
	Found Outcome = iota
	// Failed covers errors, timeouts and zero usable URLs alike.
	Failed
)

// Next is the transition function. Terminal states are absorbing.
func Next(s State, o Outcome) State {
	switch s {
	case TryPrimary:
		if o == Found {
			return Fetching
		}
		return TryFallback
	case TryFallback:
		if o == Found {
			return Fetching
		}
		return Exhausted
	default:
		return s
	}
}

// Terminal reports whether no further search attempt follows s.
func (s State) Terminal() bool {
	return s == Exhausted || s == Fetching
}
