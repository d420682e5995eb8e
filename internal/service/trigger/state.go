package trigger

// State is the lifecycle position of a session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateAlerting
	StateSpeaking
	StateSustained
	StateDismissed
	StateSnoozed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAlerting:
		return "alerting"
	case StateSpeaking:
		return "speaking"
	case StateSustained:
		return "sustained"
	case StateDismissed:
		return "dismissed"
	case StateSnoozed:
		return "snoozed"
	default:
		return "unknown"
	}
}

// Active reports whether the session still holds resources.
func (s State) Active() bool {
	return s != StateDismissed && s != StateSnoozed
}

// ending is how a session was asked to finish.
type ending int

const (
	// endDismiss is a user dismissal; the alarm is re-armed afterwards.
	endDismiss ending = iota
	// endSnooze is a user snooze; a one-shot re-fire is armed afterwards.
	endSnooze
	// endShutdown is process shutdown; nothing is re-armed.
	endShutdown
)

func (e ending) finalState() State {
	if e == endSnooze {
		return StateSnoozed
	}

	return StateDismissed
}
