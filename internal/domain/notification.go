package domain

import "time"

type NotificationChannel string

const (
	NotificationChannelLog      NotificationChannel = "log"
	NotificationChannelTelegram NotificationChannel = "telegram"
	NotificationChannelSendGrid NotificationChannel = "sendgrid"
)

// Notification is one recorded delivery attempt.
type Notification struct {
	ID          int32               `json:"id"`
	Channel     NotificationChannel `json:"channel"`
	Destination string              `json:"destination"`
	Message     string              `json:"message"`
	Delivered   bool                `json:"delivered"`
	Error       string              `json:"error,omitempty"`
	CreatedOn   time.Time           `json:"created_on"`
}
