package reactive

// State is the lifecycle position of a subscription.
type State int32

const (
	// Active subscriptions accept demand and emit items.
	Active State = iota
	// Completed subscriptions delivered OnComplete.
	Completed
	// Cancelled subscriptions were cancelled by their subscriber.
	Cancelled
	// Errored subscriptions delivered OnError.
	Errored
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is absorbing.
func (s State) Terminal() bool {
	return s != Active
}
