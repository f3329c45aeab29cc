package notify

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	User    string // target user email; empty for broadcast sinks
	Kind    string // application event kind, e.g. "focus_complete"
	Title   string
	Message string
	Icon    string
	Type    NotificationType
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send sends the notification to all notifiers
func (m *MultiNotifier) Send(n Notification) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Send(n Notification) error { return nil }

// FuncNotifier adapts a function to the Notifier interface
type FuncNotifier func(n Notification) error

func (f FuncNotifier) Send(n Notification) error { return f(n) }

// NotificationStore persists notifications for the in-app dropdown
type NotificationStore interface {
	AddNotification(userEmail, kind, title, message, icon string) error
}

// StoreNotifier writes notifications to durable per-user storage
type StoreNotifier struct {
	store NotificationStore
}

// NewStoreNotifier creates a store-backed notifier
func NewStoreNotifier(store NotificationStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

// Send persists the notification; notifications without a target user
// are dropped
func (s *StoreNotifier) Send(n Notification) error {
	if n.User == "" {
		return nil
	}
	return s.store.AddNotification(n.User, n.Kind, n.Title, n.Message, n.Icon)
}
