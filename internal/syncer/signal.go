package syncer

// SignalKind identifies what a Signal carries.
type SignalKind int

const (
	// SignalState reports a lifecycle transition; Err is set on failure.
	SignalState SignalKind = iota
	// SignalProgress reports bootstrap progress, 0 to 100.
	SignalProgress
	// SignalSettings reports the fetched layout configuration.
	SignalSettings
	// SignalResetScroll asks the host to scroll back to the origin.
	SignalResetScroll
	// SignalNotice carries a short user-facing message.
	SignalNotice
	// SignalPin reports the outcome of a pin toggle.
	SignalPin
)

func (k SignalKind) String() string {
	switch k {
	case SignalState:
		return "state"
	case SignalProgress:
		return "progress"
	case SignalSettings:
		return "settings"
	case SignalResetScroll:
		return "reset-scroll"
	case SignalNotice:
		return "notice"
	case SignalPin:
		return "pin"
	default:
		return "unknown"
	}
}

// Signal is a notification for the host.
type Signal struct {
	Kind     SignalKind
	State    State
	Progress int
	Settings Settings
	// Smooth is the scroll behaviour requested by a reset-scroll.
	Smooth bool
	Notice string
	Pin    PinResult
	Err    error
}
