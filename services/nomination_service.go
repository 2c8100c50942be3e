package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"award-nomination-system/models"
	"award-nomination-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type NominationService struct {
	DB *gorm.DB
}

func NewNominationService(db *gorm.DB) *NominationService {
	return &NominationService{DB: db}
}

// SubmissionInput carries a parsed nomination form. Photo fields are filled
// in only after the object-storage upload has succeeded, so a failed upload
// never leaves a partial record behind.
type SubmissionInput struct {
	NomineeName   string
	NomineeEmail  string
	NomineePhone  string
	NomineeAge    int
	NomineeGender string
	NomineeRegion string

	NominatorName  string
	NominatorEmail string
	NominatorPhone string
	Relationship   string

	Reason        string
	AwardCategory models.Category

	PhotoURL string
	PhotoKey string
}

// Validate checks required fields and category membership, collecting every
// offending field so the form can highlight them all at once.
func (in *SubmissionInput) Validate() error {
	var fields []string
	if strings.TrimSpace(in.NomineeName) == "" {
		fields = append(fields, "nominee_name")
	}
	if strings.TrimSpace(in.NominatorName) == "" {
		fields = append(fields, "nominator_name")
	}
	if strings.TrimSpace(in.NominatorEmail) == "" || !strings.Contains(in.NominatorEmail, "@") {
		fields = append(fields, "nominator_email")
	}
	if strings.TrimSpace(in.Reason) == "" {
		fields = append(fields, "reason")
	}
	if !in.AwardCategory.Valid() {
		fields = append(fields, "award_category")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// displayName trims and collapses whitespace. Monocase input (all lower or
// all upper, common on phone submissions) is re-cased for display; mixed-case
// names like "McDonald" are left alone.
func displayName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

// SubmitNomination validates and persists a new nomination in
// (submitted, pending). The photo, if any, must already be uploaded.
func (s *NominationService) SubmitNomination(in SubmissionInput) (*models.Nomination, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	nomineeName := displayName(in.NomineeName)
	nom := &models.Nomination{
		ID:             uuid.NewString(),
		Slug:           slug.Make(nomineeName) + "-" + uuid.NewString()[:8],
		NomineeName:    nomineeName,
		NomineeEmail:   strings.TrimSpace(strings.ToLower(in.NomineeEmail)),
		NomineePhone:   strings.TrimSpace(in.NomineePhone),
		NomineeAge:     in.NomineeAge,
		NomineeGender:  strings.TrimSpace(in.NomineeGender),
		NomineeRegion:  strings.TrimSpace(in.NomineeRegion),
		NominatorName:  displayName(in.NominatorName),
		NominatorEmail: strings.TrimSpace(strings.ToLower(in.NominatorEmail)),
		NominatorPhone: strings.TrimSpace(in.NominatorPhone),
		Relationship:   strings.TrimSpace(in.Relationship),
		Reason:         strings.TrimSpace(in.Reason),
		AwardCategory:  in.AwardCategory,
		PhotoURL:       in.PhotoURL,
		PhotoKey:       in.PhotoKey,
		Status:         models.StatusSubmitted,
		AdminReview:    models.AdminReview{Status: models.ReviewPending},
	}
	if err := s.DB.Create(nom).Error; err != nil {
		return nil, err
	}
	return nom, nil
}

// ApplyAdminDecision records an admin-review outcome. The write is a single
// conditional UPDATE guarded on a non-terminal review status, so two admins
// racing on the same nomination resolve to one winner; the loser gets a
// ConflictError naming the reviewer who got there first.
func (s *NominationService) ApplyAdminDecision(nominationID string, decision models.ReviewStatus, reviewerID, note string) (*models.Nomination, error) {
	if !decision.Decision() {
		return nil, &ValidationError{Fields: []string{"decision"}}
	}
	if strings.TrimSpace(reviewerID) == "" {
		return nil, &ValidationError{Fields: []string{"reviewer_id"}}
	}

	now := time.Now()
	res := s.DB.Model(&models.Nomination{}).
		Where("id = ? AND admin_review_status IN ?", nominationID,
			[]models.ReviewStatus{models.ReviewPending, models.ReviewNeedsInfo}).
		Updates(map[string]interface{}{
			"admin_review_status":      decision,
			"admin_review_reviewer_id": reviewerID,
			"admin_review_reviewed_at": now,
			"admin_review_note":        note,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		nom, err := s.GetNomination(nominationID)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{Msg: fmt.Sprintf(
			"nomination already reviewed: %s by %s", nom.AdminReview.Status, nom.AdminReview.ReviewerID)}
	}
	return s.GetNomination(nominationID)
}

// AdvanceLifecycle moves a nomination along the lifecycle graph. The target
// must be a direct successor of the current status, and the write is
// optimistic: if the status moved underneath us the caller gets a
// ConflictError rather than a blind overwrite.
func (s *NominationService) AdvanceLifecycle(nominationID string, target models.NominationStatus) (*models.Nomination, error) {
	if !target.Valid() {
		return nil, &ValidationError{Fields: []string{"status"}}
	}
	nom, err := s.GetNomination(nominationID)
	if err != nil {
		return nil, err
	}
	if !nom.Status.CanAdvance(target) {
		return nil, &IllegalTransitionError{From: nom.Status, To: target}
	}

	res := s.DB.Model(&models.Nomination{}).
		Where("id = ? AND status = ?", nominationID, nom.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &ConflictError{Msg: "nomination status changed concurrently, re-read and retry"}
	}
	return s.GetNomination(nominationID)
}

// ResubmitNomination returns a needs-info nomination to pending after the
// nominator has supplied the requested information. Only needs-info records
// can re-enter the queue; anything else is a conflict.
func (s *NominationService) ResubmitNomination(nominationID string) (*models.Nomination, error) {
	res := s.DB.Model(&models.Nomination{}).
		Where("id = ? AND admin_review_status = ?", nominationID, models.ReviewNeedsInfo).
		Updates(map[string]interface{}{
			"admin_review_status":      models.ReviewPending,
			"admin_review_reviewer_id": "",
			"admin_review_reviewed_at": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		nom, err := s.GetNomination(nominationID)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{Msg: fmt.Sprintf(
			"only needs-info nominations can be resubmitted (current: %s)", nom.AdminReview.Status)}
	}
	return s.GetNomination(nominationID)
}

// RemovePhoto takes down a nomination's supporting photo: the object is
// deleted from storage and the record's photo fields cleared. The nomination
// itself stays.
func (s *NominationService) RemovePhoto(ctx context.Context, nominationID string) (*models.Nomination, error) {
	nom, err := s.GetNomination(nominationID)
	if err != nil {
		return nil, err
	}
	if nom.PhotoKey == "" {
		return nil, &ConflictError{Msg: "nomination has no photo"}
	}
	if err := utils.DeleteFileFromR2(ctx, nom.PhotoKey); err != nil {
		return nil, &DependencyError{Op: "object-storage delete", Err: err}
	}
	err = s.DB.Model(&models.Nomination{}).
		Where("id = ?", nominationID).
		Updates(map[string]interface{}{"photo_url": "", "photo_key": ""}).Error
	if err != nil {
		return nil, err
	}
	return s.GetNomination(nominationID)
}

// GetNomination fetches one nomination or ErrNotFound.
func (s *NominationService) GetNomination(id string) (*models.Nomination, error) {
	var nom models.Nomination
	if err := s.DB.First(&nom, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &nom, nil
}

// ListNominations returns nominations for the admin console, newest first,
// optionally filtered by lifecycle status, review status, and category.
func (s *NominationService) ListNominations(status models.NominationStatus, review models.ReviewStatus, category models.Category) ([]models.Nomination, error) {
	q := s.DB.Order("submitted_at DESC")
	if status != "" {
		if !status.Valid() {
			return nil, &ValidationError{Fields: []string{"status"}}
		}
		q = q.Where("status = ?", status)
	}
	if review != "" {
		if !review.Valid() {
			return nil, &ValidationError{Fields: []string{"review"}}
		}
		q = q.Where("admin_review_status = ?", review)
	}
	if category != "" {
		if !category.Valid() {
			return nil, &ValidationError{Fields: []string{"category"}}
		}
		q = q.Where("award_category = ?", category)
	}
	var noms []models.Nomination
	if err := q.Find(&noms).Error; err != nil {
		return nil, err
	}
	return noms, nil
}

// Finalists returns the public finalist list, optionally for one category.
// This is what the voting page renders.
func (s *NominationService) Finalists(category models.Category) ([]models.Nomination, error) {
	q := s.DB.Where("status = ?", models.StatusFinalist).Order("award_category, nominee_name")
	if category != "" {
		if !category.Valid() {
			return nil, &ValidationError{Fields: []string{"category"}}
		}
		q = q.Where("award_category = ?", category)
	}
	var noms []models.Nomination
	if err := q.Find(&noms).Error; err != nil {
		return nil, err
	}
	return noms, nil
}

// Winners returns the announced winners, one page per award season.
func (s *NominationService) Winners() ([]models.Nomination, error) {
	var noms []models.Nomination
	err := s.DB.Where("status = ?", models.StatusWinner).
		Order("award_category").Find(&noms).Error
	if err != nil {
		return nil, err
	}
	return noms, nil
}

// --- Fiber handlers ---

// CreateNomination handles the public multipart submission form. The photo
// upload runs before the record is created: if storage is down the caller
// gets a retry-later error and nothing is persisted.
func (s *NominationService) CreateNomination(c *fiber.Ctx) error {
	age := 0
	if ageStr := c.FormValue("nominee_age"); ageStr != "" {
		n, err := strconv.Atoi(ageStr)
		if err != nil || n < 0 {
			return respondError(c, &ValidationError{Fields: []string{"nominee_age"}})
		}
		age = n
	}

	in := SubmissionInput{
		NomineeName:    c.FormValue("nominee_name"),
		NomineeEmail:   c.FormValue("nominee_email"),
		NomineePhone:   c.FormValue("nominee_phone"),
		NomineeAge:     age,
		NomineeGender:  c.FormValue("nominee_gender"),
		NomineeRegion:  c.FormValue("nominee_region"),
		NominatorName:  c.FormValue("nominator_name"),
		NominatorEmail: c.FormValue("nominator_email"),
		NominatorPhone: c.FormValue("nominator_phone"),
		Relationship:   c.FormValue("relationship"),
		Reason:         c.FormValue("reason"),
		AwardCategory:  models.Category(c.FormValue("award_category")),
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	if photo, err := c.FormFile("photo"); err == nil && photo.Size > 0 {
		ext := filepath.Ext(photo.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "nominations/photos/" + uuid.NewString() + ext
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		url, err := utils.UploadFileToR2(ctx, photo, key)
		if err != nil {
			log.Printf("[NOMINATION] photo upload failed: %v", err)
			return respondError(c, &DependencyError{Op: "object-storage upload", Err: err})
		}
		in.PhotoURL = url
		in.PhotoKey = key
	}

	nom, err := s.SubmitNomination(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(nom)
}

func (s *NominationService) GetAllNominations(c *fiber.Ctx) error {
	noms, err := s.ListNominations(
		models.NominationStatus(c.Query("status")),
		models.ReviewStatus(c.Query("review")),
		models.Category(c.Query("category")),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(noms)
}

func (s *NominationService) GetNominationByID(c *fiber.Ctx) error {
	nom, err := s.GetNomination(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nom)
}

func (s *NominationService) ReviewNomination(c *fiber.Ctx) error {
	type Req struct {
		Decision models.ReviewStatus `json:"decision"`
		Note     string              `json:"note,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	reviewerID, _ := c.Locals("user_id").(string)
	nom, err := s.ApplyAdminDecision(c.Params("id"), req.Decision, reviewerID, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nom)
}

func (s *NominationService) UpdateNominationStatus(c *fiber.Ctx) error {
	type Req struct {
		Status models.NominationStatus `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	nom, err := s.AdvanceLifecycle(c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nom)
}

func (s *NominationService) RemoveNominationPhoto(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()
	nom, err := s.RemovePhoto(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nom)
}

func (s *NominationService) ResubmitNominationEndpoint(c *fiber.Ctx) error {
	nom, err := s.ResubmitNomination(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nom)
}

func (s *NominationService) GetFinalists(c *fiber.Ctx) error {
	noms, err := s.Finalists(models.Category(c.Query("category")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(noms)
}

func (s *NominationService) GetWinners(c *fiber.Ctx) error {
	noms, err := s.Winners()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(noms)
}

func (s *NominationService) GetCategories(c *fiber.Ctx) error {
	return c.JSON(models.AwardCategories)
}
