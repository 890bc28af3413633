package domain

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomePartial
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchResult is what a place source produced for one target. Err is the
// cause that stopped the search early; Places holds whatever was collected
// before that point.
type SearchResult struct {
	Target QueryTarget
	Places []Place
	Pages  int
	Err    error
}

func (r SearchResult) Outcome() Outcome {
	switch {
	case r.Err == nil:
		return OutcomeOK
	case len(r.Places) > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}
