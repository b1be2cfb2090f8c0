package provision

// State is a step of a single resolution. States only move forward; Failed
// and Done are terminal.
type State uint8

const (
	Start State = iota
	Classified
	FetchedOrDecoded
	PassThrough
	Parsed
	Sanitized
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Classified:
		return "classified"
	case FetchedOrDecoded:
		return "fetched_or_decoded"
	case PassThrough:
		return "pass_through"
	case Parsed:
		return "parsed"
	case Sanitized:
		return "sanitized"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer receives every state a resolution enters, in order
type Observer func(State)
