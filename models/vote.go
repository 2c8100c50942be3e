package models

import "time"

// Vote is one public ballot. Uniqueness is enforced by the composite index on
// (voter_email, category) at the storage layer, so concurrent casts for the
// same key resolve to exactly one row. A cast vote is immutable; fraud
// takedowns flip Voided instead of deleting evidence.
type Vote struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	NominationID string   `json:"nomination_id" gorm:"not null;index"`
	Category     Category `json:"category" gorm:"type:varchar(64);not null;uniqueIndex:idx_votes_voter_email_category"`
	VoterEmail   string   `json:"voter_email" gorm:"not null;uniqueIndex:idx_votes_voter_email_category"`
	VoterIP      string   `json:"voter_ip" gorm:"index"` // analytics + anti-fraud review only, never an eligibility key

	// Optional demographics, analytics only.
	VoterAge    int    `json:"voter_age,omitempty"`
	VoterGender string `json:"voter_gender,omitempty"`
	VoterRegion string `json:"voter_region,omitempty"`

	Voided       bool       `json:"voided" gorm:"default:false;index"`
	VoidedReason string     `json:"voided_reason,omitempty"`
	VoidedAt     *time.Time `json:"voided_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Nomination Nomination `json:"nomination,omitempty" gorm:"foreignKey:NominationID"`
}

// TallyEntry is one row of a per-category tally (non-voided votes only).
type TallyEntry struct {
	NominationID string `json:"nomination_id"`
	Count        int64  `json:"count"`
}

// IPFrequencyEntry is one row of the read-only (voter_ip, category) frequency
// report surfaced to anti-fraud review. Shared networks are expected, so the
// count is informational and never enforced automatically.
type IPFrequencyEntry struct {
	VoterIP string `json:"voter_ip"`
	Count   int64  `json:"count"`
}
