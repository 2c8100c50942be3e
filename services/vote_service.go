package services

import (
	"errors"
	"strings"
	"time"

	"award-nomination-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteService struct {
	DB *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{DB: db}
}

// VoteInput is one ballot as received from the public voting page.
// Demographics are analytics-only and never touch eligibility.
type VoteInput struct {
	VoterEmail   string
	VoterIP      string
	Category     models.Category
	NominationID string

	VoterAge    int
	VoterGender string
	VoterRegion string
}

// CastVote records one ballot. Eligibility is exactly one vote per
// (voter email, category), enforced by the unique index on the insert itself:
// N concurrent casts for the same key yield one row and N-1
// DuplicateVoteErrors, with no application-level lock. The voter IP is stored
// for later anti-fraud review only.
func (s *VoteService) CastVote(in VoteInput) (*models.Vote, error) {
	email := strings.ToLower(strings.TrimSpace(in.VoterEmail))

	var fields []string
	if email == "" || !strings.Contains(email, "@") {
		fields = append(fields, "voter_email")
	}
	if !in.Category.Valid() {
		fields = append(fields, "category")
	}
	if strings.TrimSpace(in.NominationID) == "" {
		fields = append(fields, "nomination_id")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var nom models.Nomination
	if err := s.DB.First(&nom, "id = ?", in.NominationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Fields: []string{"nomination_id"}}
		}
		return nil, err
	}
	if nom.AwardCategory != in.Category {
		return nil, &ValidationError{Fields: []string{"category"}}
	}
	if nom.Status != models.StatusFinalist && nom.Status != models.StatusWinner {
		return nil, &ConflictError{Msg: "voting is only open for finalists"}
	}

	vote := &models.Vote{
		ID:           uuid.NewString(),
		NominationID: nom.ID,
		Category:     in.Category,
		VoterEmail:   email,
		VoterIP:      strings.TrimSpace(in.VoterIP),
		VoterAge:     in.VoterAge,
		VoterGender:  strings.TrimSpace(in.VoterGender),
		VoterRegion:  strings.TrimSpace(in.VoterRegion),
	}
	if err := s.DB.Create(vote).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateVoteError{VoterEmail: email, Category: in.Category}
		}
		return nil, err
	}
	return vote, nil
}

// Tally counts non-voided votes per nomination in one category. Single
// GROUP BY over a snapshot read; exact real-time totals are not required,
// so the ledger is never locked.
func (s *VoteService) Tally(category models.Category) (map[string]int64, error) {
	if !category.Valid() {
		return nil, &ValidationError{Fields: []string{"category"}}
	}
	var rows []models.TallyEntry
	err := s.DB.Model(&models.Vote{}).
		Select("nomination_id, COUNT(*) as count").
		Where("category = ? AND voided = ?", category, false).
		Group("nomination_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	tally := make(map[string]int64, len(rows))
	for _, r := range rows {
		tally[r.NominationID] = r.Count
	}
	return tally, nil
}

// IPFrequency lists (voter_ip, count) for a category, busiest first, for
// anti-fraud review. Informational only: shared networks are expected, so
// nothing is enforced off this number.
func (s *VoteService) IPFrequency(category models.Category) ([]models.IPFrequencyEntry, error) {
	if !category.Valid() {
		return nil, &ValidationError{Fields: []string{"category"}}
	}
	var rows []models.IPFrequencyEntry
	err := s.DB.Model(&models.Vote{}).
		Select("voter_ip, COUNT(*) as count").
		Where("category = ?", category).
		Group("voter_ip").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// VoidVote flags a vote as fraudulent instead of deleting it, preserving the
// audit trail. Conditional on the vote not being voided already.
func (s *VoteService) VoidVote(voteID, reason string) (*models.Vote, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Fields: []string{"reason"}}
	}
	now := time.Now()
	res := s.DB.Model(&models.Vote{}).
		Where("id = ? AND voided = ?", voteID, false).
		Updates(map[string]interface{}{
			"voided":        true,
			"voided_reason": reason,
			"voided_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var vote models.Vote
		if err := s.DB.First(&vote, "id = ?", voteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, &ConflictError{Msg: "vote is already voided"}
	}
	var vote models.Vote
	if err := s.DB.First(&vote, "id = ?", voteID).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// --- Fiber handlers ---

func (s *VoteService) CreateVote(c *fiber.Ctx) error {
	type Req struct {
		VoterEmail   string `json:"voter_email"`
		Category     string `json:"category"`
		NominationID string `json:"nomination_id"`
		VoterAge     int    `json:"voter_age,omitempty"`
		VoterGender  string `json:"voter_gender,omitempty"`
		VoterRegion  string `json:"voter_region,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	vote, err := s.CastVote(VoteInput{
		VoterEmail:   req.VoterEmail,
		VoterIP:      c.IP(),
		Category:     models.Category(req.Category),
		NominationID: req.NominationID,
		VoterAge:     req.VoterAge,
		VoterGender:  req.VoterGender,
		VoterRegion:  req.VoterRegion,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(vote)
}

func (s *VoteService) GetTally(c *fiber.Ctx) error {
	tally, err := s.Tally(models.Category(c.Query("category")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"category": c.Query("category"),
		"tally":    tally,
	})
}

func (s *VoteService) GetIPFrequency(c *fiber.Ctx) error {
	rows, err := s.IPFrequency(models.Category(c.Query("category")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

func (s *VoteService) VoidVoteEndpoint(c *fiber.Ctx) error {
	type Req struct {
		Reason string `json:"reason"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	vote, err := s.VoidVote(c.Params("id"), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vote)
}
