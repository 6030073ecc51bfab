package domain

import "time"

// Channel tags inferred from the notification subject line.
const (
	SourceOfferUp  = "OfferUp"
	SourceFacebook = "Facebook Marketplace"
	SourceEmail    = "Email"
)

// RawMessage is an inbound inquiry as delivered by the mail transport.
type RawMessage struct {
	// ID is the RFC Message-Id when the transport provides one, otherwise a
	// folder-scoped UID fallback. The fallback is not stable across mailbox
	// renumbering; see ledger package.
	ID          string
	Subject     string
	SenderName  string
	SenderEmail string
	TextBody    string
	HTMLBody    string
	ReceivedAt  time.Time
}

// ExtractedFields holds the structured signals mined from one message.
type ExtractedFields struct {
	Source string
	Price  *float64
	URL    string
	City   string
}

// ScoreResult is a bounded lead-quality score plus the ordered tag trail
// explaining which signals fired.
type ScoreResult struct {
	Score float64
	Tags  []string
}

// LeadRecord is the persisted unit appended to the lead log, at most once
// per unique message identifier.
type LeadRecord struct {
	CapturedAt  time.Time
	Source      string
	SenderName  string
	SenderEmail string
	Subject     string
	Body        string
	URL         string
	City        string
	Price       *float64
	Score       float64
	Qualified   bool
}
