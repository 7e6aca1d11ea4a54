package core

// SMSMessage is a single outbound text message. The same body is used for
// SMS and WhatsApp delivery; the gateway decides the channel.
type SMSMessage struct {
	To   string // E.164 or local mobile number
	Body string
}

// SMSService is any service that can send text messages.
type SMSService interface {
	// SendMessages sends messages concurrently; delivery is fire-and-forget.
	SendMessages(messages ...*SMSMessage)
}
