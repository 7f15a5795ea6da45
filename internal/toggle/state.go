package toggle

// State is derived from slot occupancy and never stored.
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Menu labels. The label names the action the user can take next.
const (
	LabelEnable  = "Enable"
	LabelDisable = "Disable"
)

// LabelFor returns the action label shown for s.
func LabelFor(s State) string {
	if s == Enabled {
		return LabelDisable
	}
	return LabelEnable
}

// Event is a user interaction delivered by a front end.
type Event int

const (
	EventActivate Event = iota
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventActivate:
		return "activate"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}
