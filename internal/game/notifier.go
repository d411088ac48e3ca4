package game

// Severity classifies a notification for the display layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives fire-and-forget messages from a session. Implementations
// must not call back into the session; both methods are invoked with the
// session lock held.
type Notifier interface {
	// Notify delivers a transient banner-style message.
	Notify(message string, severity Severity)
	// Modal delivers a longer digest the player should acknowledge. It must
	// not block the caller.
	Modal(title, message string)
}

// NopNotifier discards everything. Used when no sink is attached.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Severity) {}
func (NopNotifier) Modal(string, string)    {}
