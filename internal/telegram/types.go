package telegram

// Wire types for the Bot API subset this bot consumes.

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64     `json:"message_id"`
	Chat      *Chat     `json:"chat"`
	Text      string    `json:"text"`
	Location  *Location `json:"location"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type getUpdatesResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}
