package notifications

// Notifier receives human-readable tracker events.
type Notifier interface {
	Post(msg string) error
}
