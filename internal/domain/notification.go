package domain

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is delivered fire-and-forget to the notifier collaborator.
type Notification struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Kind        NotificationKind `json:"kind"`
}
