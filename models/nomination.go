package models

import (
	"time"

	"gorm.io/gorm"
)

// Nomination is a single award submission. It carries two independent state
// dimensions: Status (lifecycle, driven by judging events) and the embedded
// AdminReview (driven by the review console). Records are never physically
// deleted (soft delete only) so the audit trail survives takedowns.
type Nomination struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Slug string `json:"slug" gorm:"index"` // public finalist-page slug, derived from nominee name

	// Nominee
	NomineeName   string `json:"nominee_name" gorm:"not null"`
	NomineeEmail  string `json:"nominee_email"`
	NomineePhone  string `json:"nominee_phone,omitempty"`
	NomineeAge    int    `json:"nominee_age,omitempty"`
	NomineeGender string `json:"nominee_gender,omitempty"`
	NomineeRegion string `json:"nominee_region,omitempty"`

	// Nominator
	NominatorName  string `json:"nominator_name" gorm:"not null"`
	NominatorEmail string `json:"nominator_email" gorm:"not null;index"`
	NominatorPhone string `json:"nominator_phone,omitempty"`
	Relationship   string `json:"relationship,omitempty"` // e.g. "teacher", "parent", "self"

	Reason        string   `json:"reason" gorm:"type:text"`
	AwardCategory Category `json:"award_category" gorm:"type:varchar(64);not null;index"`

	// Supporting photo, uploaded to object storage before the record exists.
	PhotoURL string `json:"photo_url,omitempty"`
	PhotoKey string `json:"photo_key,omitempty"`

	Status      NominationStatus `json:"status" gorm:"type:varchar(16);default:'submitted';index"`
	AdminReview AdminReview      `json:"admin_review" gorm:"embedded;embeddedPrefix:admin_review_"`

	SubmittedAt time.Time      `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// AdminReview is the review-console sub-record on a nomination. ReviewerID
// and ReviewedAt are set together with the decision, atomically.
type AdminReview struct {
	Status     ReviewStatus `json:"status" gorm:"type:varchar(16);default:'pending'"`
	ReviewerID string       `json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	Note       string       `json:"note,omitempty" gorm:"type:text"`
}
