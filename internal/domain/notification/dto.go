package notification

// CreateNotificationRequest represents a request to send a push notification
type CreateNotificationRequest struct {
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}

func (r CreateNotificationRequest) ToNotification() Notification {
	return Notification{
		RecipientID: r.RecipientID,
		SenderID:    r.SenderID,
		Type:        r.Type,
		Title:       r.Title,
		Message:     r.Message,
		Data:        r.Data,
	}
}
