package notification

// NotificationType represents the type of notification
type NotificationType string

const (
	TypePushedIn      NotificationType = "attendance_pushed_in"
	TypePushedOut     NotificationType = "attendance_pushed_out"
	TypeSessionClosed NotificationType = "attendance_session_closed"
	TypeChatMessage   NotificationType = "chat_message"
	TypeBlockComment  NotificationType = "block_comment"
)

// Notification is one push message addressed to a single user.
type Notification struct {
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}
