package model

// EventFields carries the caller-supplied columns of one transport
// event. Time fields hold the transport's own wall-clock markers; they
// populate the named start/end/duration columns only and never the
// row's authoritative timestamp.
type EventFields struct {
	Message         string
	CompleteMessage string

	// Explicit partner-scoped text, used when the transport already
	// knows which side authored the message.
	PartnerMessage         string
	PartnerCompleteMessage string

	StartSendingTime string
	EndSendingTime   string
	TotalSendingTime string
	StartViewingTime string
	EndViewingTime   string
	TotalViewingTime string

	WarningCount           int
	CorrectionCount        int
	PartnerWarningCount    int
	PartnerCorrectionCount int
}

// CopyTimesTo copies every shared wall-clock marker onto a row side.
// Both sides of a paired event see these fields identically.
func (f *EventFields) CopyTimesTo(s *RowSide) {
	s.StartSendingTime = f.StartSendingTime
	s.EndSendingTime = f.EndSendingTime
	s.TotalSendingTime = f.TotalSendingTime
	s.StartViewingTime = f.StartViewingTime
	s.EndViewingTime = f.EndViewingTime
	s.TotalViewingTime = f.TotalViewingTime
}
