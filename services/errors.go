package services

import (
	"errors"
	"fmt"
	"strings"

	"award-nomination-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ValidationError reports malformed, missing, or unknown-category input.
// User-correctable; maps to 400.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// ConflictError reports a precondition violated by a prior or concurrent
// action (re-review, double transition, lost optimistic write). Maps to 409.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// DuplicateVoteError is the uniqueness-specific conflict: the voter already
// cast a ballot in this category. Surfaced distinctly so the client can show
// "you already voted" instead of a generic conflict.
type DuplicateVoteError struct {
	VoterEmail string
	Category   models.Category
}

func (e *DuplicateVoteError) Error() string {
	return fmt.Sprintf("vote already cast by %s in category %q", e.VoterEmail, e.Category)
}

// IllegalTransitionError reports a lifecycle target that is not a direct
// successor of the current status.
type IllegalTransitionError struct {
	From models.NominationStatus
	To   models.NominationStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot advance nomination from %q to %q", e.From, e.To)
}

// NotAssignedError reports a judge acting on a category outside their
// assignment. Maps to 403.
type NotAssignedError struct {
	JudgeID  string
	Category models.Category
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("judge %s is not assigned to category %q", e.JudgeID, e.Category)
}

// DependencyError wraps a failed or timed-out external collaborator call
// (object storage, profile service). Clients get a generic retry-later
// message; the wrapped cause stays in the logs.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s failed: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// ErrNotFound is returned when the addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// respondError maps a domain error to the HTTP response. Every typed error is
// recovered here; anything unrecognized is treated as storage unavailability
// and surfaced as a 500 with no detail leaked.
func respondError(c *fiber.Ctx, err error) error {
	var (
		valErr  *ValidationError
		dupErr  *DuplicateVoteError
		confErr *ConflictError
		illErr  *IllegalTransitionError
		naErr   *NotAssignedError
		depErr  *DependencyError
	)
	switch {
	case errors.As(err, &valErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": valErr.Fields,
		})
	case errors.As(err, &dupErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "you have already voted in this category",
			"code":  "already_voted",
		})
	case errors.As(err, &illErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": illErr.Error(),
			"code":  "illegal_transition",
		})
	case errors.As(err, &confErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": confErr.Msg,
			"code":  "conflict",
		})
	case errors.As(err, &naErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": naErr.Error(),
			"code":  "not_assigned",
		})
	case errors.As(err, &depErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "a required service is unavailable, please retry later",
		})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// isUniqueViolation detects a storage-layer unique-constraint hit under both
// the Postgres driver (SQLSTATE 23505) and GORM's translated error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
