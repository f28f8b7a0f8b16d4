package model

// Status marks which side of an exchange a row describes.
type Status string

const (
	StatusSender   Status = "sender"
	StatusReceiver Status = "receiver"
)

// Invert swaps sender and receiver. Any other value passes through
// unchanged so transports can carry their own statuses without the
// mirror dropping them.
func (s Status) Invert() Status {
	switch s {
	case StatusSender:
		return StatusReceiver
	case StatusReceiver:
		return StatusSender
	default:
		return s
	}
}

// EventType identifies the transport event that produced a row.
type EventType string

const (
	EventStartSending  EventType = "start_sending"
	EventEndSending    EventType = "end_sending"
	EventCancelSending EventType = "cancel_sending"
	EventStartViewing  EventType = "start_viewing"
	EventEndViewing    EventType = "end_viewing"
	EventTyping        EventType = "typing"
	EventMessage       EventType = "message"
	EventEmotionSample EventType = "emotion_detected"
)
