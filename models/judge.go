package models

import (
	"time"

	"gorm.io/gorm"
)

// Judge links a verified external user to the categories they may review.
// Assigned categories live in the per-category progress rows; the judge row
// itself only carries identity and the active/inactive toggle. Judges are
// soft-deleted only, for audit.
type Judge struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ExternalUserID string `json:"external_user_id" gorm:"uniqueIndex;not null"`
	Status         string `json:"status" gorm:"type:varchar(16);default:'active'"` // active | inactive

	Progress []JudgeCategoryProgress `json:"judging_progress,omitempty" gorm:"foreignKey:JudgeID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JudgeCategoryProgress is one judge's counters for one assigned category.
// Invariant: ReviewedNominations <= TotalNominations, and CompletedAt is set
// exactly when the two are equal (and later cleared if new nominations raise
// the total). Counters are per-judge: two judges on the same category track
// independently.
type JudgeCategoryProgress struct {
	ID       string   `json:"id" gorm:"primaryKey"`
	JudgeID  string   `json:"judge_id" gorm:"not null;uniqueIndex:idx_judge_category"`
	Category Category `json:"category" gorm:"type:varchar(64);not null;uniqueIndex:idx_judge_category"`

	TotalNominations    int        `json:"total_nominations" gorm:"default:0"`
	ReviewedNominations int        `json:"reviewed_nominations" gorm:"default:0"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// JudgeUser is a local snapshot of profile-service user data needed by the
// review console (display names next to judge records). Populated by the
// profile sync worker; owned solely by this service.
type JudgeUser struct {
	ID                string  `json:"id" gorm:"primaryKey"`
	ExternalUserID    string  `json:"external_user_id" gorm:"uniqueIndex;not null"`
	Username          string  `json:"username" gorm:"index;not null"`
	Email             string  `json:"email,omitempty"`
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
