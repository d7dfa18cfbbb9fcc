package services

// Notifier is the outbound messaging surface the services depend on.
// Implementations are fire-and-forget: calls return immediately and delivery
// is best-effort.
type Notifier interface {
	SendMessage(chatID int64, text string)
	RequestLocation(chatID int64, prompt string)
}
