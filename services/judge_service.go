package services

import (
	"errors"
	"log"
	"time"

	"award-nomination-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JudgeService struct {
	DB *gorm.DB
}

func NewJudgeService(db *gorm.DB) *JudgeService {
	return &JudgeService{DB: db}
}

// judgingPoolCount counts the nominations a judge of this category is
// expected to work through: everything at under-review or later. The pool
// only grows while a category is open, so totals never move backwards.
func judgingPoolCount(tx *gorm.DB, category models.Category) (int64, error) {
	var count int64
	err := tx.Model(&models.Nomination{}).
		Where("award_category = ? AND status IN ?", category, []models.NominationStatus{
			models.StatusUnderReview, models.StatusFinalist, models.StatusWinner, models.StatusRejected,
		}).
		Count(&count).Error
	return count, err
}

// AssignJudge links a verified user to a set of categories. Re-assignment
// merges: existing categories are kept and new ones added, unless replace is
// explicitly set, in which case categories absent from the list are removed.
func (s *JudgeService) AssignJudge(externalUserID string, categories []models.Category, replace bool) (*models.Judge, error) {
	if externalUserID == "" {
		return nil, &ValidationError{Fields: []string{"external_user_id"}}
	}
	if len(categories) == 0 {
		return nil, &ValidationError{Fields: []string{"categories"}}
	}
	if invalid := models.ValidCategories(categories); len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	var judge models.Judge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_user_id = ?", externalUserID).First(&judge).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			judge = models.Judge{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
				Status:         "active",
			}
			if err := tx.Create(&judge).Error; err != nil {
				return err
			}
		}

		for _, cat := range categories {
			var prog models.JudgeCategoryProgress
			err := tx.Where("judge_id = ? AND category = ?", judge.ID, cat).First(&prog).Error
			if err == nil {
				continue // already assigned, keep counters
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			total, err := judgingPoolCount(tx, cat)
			if err != nil {
				return err
			}
			prog = models.JudgeCategoryProgress{
				ID:               uuid.NewString(),
				JudgeID:          judge.ID,
				Category:         cat,
				TotalNominations: int(total),
			}
			if err := tx.Create(&prog).Error; err != nil {
				return err
			}
		}

		if replace {
			if err := tx.Where("judge_id = ? AND category NOT IN ?", judge.ID, categories).
				Delete(&models.JudgeCategoryProgress{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJudge(judge.ID)
}

// RecomputeTotals refreshes TotalNominations for every judge assigned to the
// category. Idempotent and safe on a timer: reviewed counts are never
// decreased (the total is floored at the reviewed count instead), and
// CompletedAt is set exactly when reviewed == total > 0 and cleared when new
// nominations reopen the gap.
func (s *JudgeService) RecomputeTotals(category models.Category) error {
	if !category.Valid() {
		return &ValidationError{Fields: []string{"category"}}
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		pool, err := judgingPoolCount(tx, category)
		if err != nil {
			return err
		}
		var rows []models.JudgeCategoryProgress
		if err := tx.Where("category = ?", category).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			total := int(pool)
			if total < row.ReviewedNominations {
				total = row.ReviewedNominations
			}
			updates := map[string]interface{}{"total_nominations": total}
			if row.ReviewedNominations == total && total > 0 {
				if row.CompletedAt == nil {
					now := time.Now()
					updates["completed_at"] = now
				}
			} else {
				updates["completed_at"] = nil
			}
			if err := tx.Model(&models.JudgeCategoryProgress{}).
				Where("id = ?", row.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordReview increments a judge's reviewed counter for one category,
// capped at the total. Reaching the cap stamps CompletedAt; calls past the
// cap change nothing and report capped=true without an error. The increment
// is optimistic (guarded on the value just read) and retried a few times
// before giving up with a ConflictError.
func (s *JudgeService) RecordReview(judgeID string, category models.Category) (*models.JudgeCategoryProgress, bool, error) {
	if !category.Valid() {
		return nil, false, &ValidationError{Fields: []string{"category"}}
	}

	for attempt := 0; attempt < 3; attempt++ {
		var prog models.JudgeCategoryProgress
		err := s.DB.Where("judge_id = ? AND category = ?", judgeID, category).First(&prog).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, &NotAssignedError{JudgeID: judgeID, Category: category}
			}
			return nil, false, err
		}

		if prog.ReviewedNominations >= prog.TotalNominations {
			return &prog, true, nil
		}

		next := prog.ReviewedNominations + 1
		updates := map[string]interface{}{"reviewed_nominations": next}
		if next == prog.TotalNominations {
			now := time.Now()
			updates["completed_at"] = now
		}
		res := s.DB.Model(&models.JudgeCategoryProgress{}).
			Where("id = ? AND reviewed_nominations = ?", prog.ID, prog.ReviewedNominations).
			Updates(updates)
		if res.Error != nil {
			return nil, false, res.Error
		}
		if res.RowsAffected == 1 {
			prog.ReviewedNominations = next
			if next == prog.TotalNominations {
				t := updates["completed_at"].(time.Time)
				prog.CompletedAt = &t
			}
			return &prog, false, nil
		}
		// Lost the race to a concurrent increment; re-read and try again.
	}
	return nil, false, &ConflictError{Msg: "review counter contended, retry"}
}

// GetJudge fetches one judge with progress rows, or ErrNotFound.
func (s *JudgeService) GetJudge(id string) (*models.Judge, error) {
	var judge models.Judge
	err := s.DB.Preload("Progress", func(db *gorm.DB) *gorm.DB {
		return db.Order("category ASC")
	}).First(&judge, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &judge, nil
}

// GetJudgeByUser resolves the judge record behind a verified user identity.
func (s *JudgeService) GetJudgeByUser(externalUserID string) (*models.Judge, error) {
	var judge models.Judge
	err := s.DB.Preload("Progress").Where("external_user_id = ?", externalUserID).First(&judge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &judge, nil
}

// SetJudgeStatus toggles active/inactive. The record survives either way,
// for audit.
func (s *JudgeService) SetJudgeStatus(id, status string) (*models.Judge, error) {
	if status != "active" && status != "inactive" {
		return nil, &ValidationError{Fields: []string{"status"}}
	}
	res := s.DB.Model(&models.Judge{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetJudge(id)
}

// ReviewQueue lists the nominations a judge still works through: everything
// at under-review in their assigned categories.
func (s *JudgeService) ReviewQueue(judgeID string) ([]models.Nomination, error) {
	var cats []models.Category
	err := s.DB.Model(&models.JudgeCategoryProgress{}).
		Where("judge_id = ?", judgeID).
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return []models.Nomination{}, nil
	}
	var noms []models.Nomination
	err = s.DB.Where("award_category IN ? AND status = ?", cats, models.StatusUnderReview).
		Order("award_category, submitted_at").
		Find(&noms).Error
	if err != nil {
		return nil, err
	}
	return noms, nil
}

// --- Fiber handlers ---

func (s *JudgeService) AssignJudgeEndpoint(c *fiber.Ctx) error {
	type Req struct {
		ExternalUserID string   `json:"external_user_id"`
		Categories     []string `json:"categories"`
		Replace        bool     `json:"replace,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	cats := make([]models.Category, 0, len(req.Categories))
	for _, cat := range req.Categories {
		cats = append(cats, models.Category(cat))
	}
	judge, err := s.AssignJudge(req.ExternalUserID, cats, req.Replace)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(judge)
}

func (s *JudgeService) UpdateAssignments(c *fiber.Ctx) error {
	type Req struct {
		Categories []string `json:"categories"`
		Replace    bool     `json:"replace,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	judge, err := s.GetJudge(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	cats := make([]models.Category, 0, len(req.Categories))
	for _, cat := range req.Categories {
		cats = append(cats, models.Category(cat))
	}
	judge, err = s.AssignJudge(judge.ExternalUserID, cats, req.Replace)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(judge)
}

func (s *JudgeService) GetAllJudges(c *fiber.Ctx) error {
	var judges []models.Judge
	err := s.DB.Preload("Progress", func(db *gorm.DB) *gorm.DB {
		return db.Order("category ASC")
	}).Find(&judges).Error
	if err != nil {
		log.Printf("ERROR fetching judges: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch judges"})
	}
	return c.JSON(judges)
}

func (s *JudgeService) GetJudgeProgress(c *fiber.Ctx) error {
	judge, err := s.GetJudge(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(judge.Progress)
}

func (s *JudgeService) UpdateJudgeStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	judge, err := s.SetJudgeStatus(c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(judge)
}

// GetMyQueue serves the signed-in judge their remaining work.
func (s *JudgeService) GetMyQueue(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	judge, err := s.GetJudgeByUser(userID)
	if err != nil {
		return respondError(c, err)
	}
	queue, err := s.ReviewQueue(judge.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(queue)
}

// RecordMyReview marks one nomination reviewed by the signed-in judge.
func (s *JudgeService) RecordMyReview(c *fiber.Ctx) error {
	type Req struct {
		Category string `json:"category"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	userID, _ := c.Locals("user_id").(string)
	judge, err := s.GetJudgeByUser(userID)
	if err != nil {
		return respondError(c, err)
	}
	prog, capped, err := s.RecordReview(judge.ID, models.Category(req.Category))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"progress": prog,
		"capped":   capped,
	})
}
