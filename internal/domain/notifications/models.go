package notifications

import "time"

const (
	TypeClaimDecision  = "claim_decision"
	TypeClaimProcessed = "claim_processed"
)

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
