package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"award-nomination-system/models"
)

func TestCastVoteOncePerCategory(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n1 := submitTestNomination(t, noms, models.CategoryAcademicExcellence)
	n2 := submitTestNomination(t, noms, models.CategoryAcademicExcellence)
	n3 := submitTestNomination(t, noms, models.CategorySportsExcellence)
	advanceToFinalist(t, noms, n1.ID)
	advanceToFinalist(t, noms, n2.ID)
	advanceToFinalist(t, noms, n3.ID)

	if _, err := votes.CastVote(VoteInput{
		VoterEmail: "a@x.com", VoterIP: "10.0.0.1",
		Category: models.CategoryAcademicExcellence, NominationID: n1.ID,
	}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	// Same email + category, even for a different nomination, is a duplicate
	_, err := votes.CastVote(VoteInput{
		VoterEmail: "a@x.com", VoterIP: "10.0.0.1",
		Category: models.CategoryAcademicExcellence, NominationID: n2.ID,
	})
	var dupErr *DuplicateVoteError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateVoteError, got %v", err)
	}

	// A different category for the same voter is fine
	if _, err := votes.CastVote(VoteInput{
		VoterEmail: "a@x.com", VoterIP: "10.0.0.1",
		Category: models.CategorySportsExcellence, NominationID: n3.ID,
	}); err != nil {
		t.Fatalf("second-category vote failed: %v", err)
	}
}

func TestCastVoteNormalizesEmail(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n := submitTestNomination(t, noms, models.CategoryLeadership)
	advanceToFinalist(t, noms, n.ID)

	if _, err := votes.CastVote(VoteInput{
		VoterEmail: "Voter@X.com", Category: models.CategoryLeadership, NominationID: n.ID,
	}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err := votes.CastVote(VoteInput{
		VoterEmail: "  voter@x.COM ", Category: models.CategoryLeadership, NominationID: n.ID,
	})
	var dupErr *DuplicateVoteError
	if !errors.As(err, &dupErr) {
		t.Fatalf("case-variant email slipped past uniqueness: %v", err)
	}
}

func TestCastVoteValidation(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n := submitTestNomination(t, noms, models.CategoryArtsCreativity)

	// Nomination not yet a finalist
	_, err := votes.CastVote(VoteInput{
		VoterEmail: "a@x.com", Category: models.CategoryArtsCreativity, NominationID: n.ID,
	})
	var confErr *ConflictError
	if !errors.As(err, &confErr) {
		t.Fatalf("vote for non-finalist should conflict, got %v", err)
	}

	advanceToFinalist(t, noms, n.ID)

	// Category mismatch between ballot and nomination
	_, err = votes.CastVote(VoteInput{
		VoterEmail: "a@x.com", Category: models.CategoryLeadership, NominationID: n.ID,
	})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("category mismatch should be a validation error, got %v", err)
	}

	// Unknown category, bad email, missing nomination id all reported at once
	_, err = votes.CastVote(VoteInput{
		VoterEmail: "nope", Category: models.Category("Basket Weaving"), NominationID: "",
	})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(valErr.Fields) != 3 {
		t.Errorf("expected 3 invalid fields, got %v", valErr.Fields)
	}
}

// Concurrent casts for one (email, category) key must resolve to exactly one
// row; everyone else gets DuplicateVoteError.
func TestConcurrentCastVoteExactlyOneSucceeds(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n := submitTestNomination(t, noms, models.CategoryRisingStar)
	advanceToFinalist(t, noms, n.ID)

	const callers = 12
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := votes.CastVote(VoteInput{
				VoterEmail:   "racer@x.com",
				VoterIP:      fmt.Sprintf("10.0.0.%d", i),
				Category:     models.CategoryRisingStar,
				NominationID: n.ID,
			})
			var dupErr *DuplicateVoteError
			switch {
			case err == nil:
				successes.Add(1)
			case errors.As(err, &dupErr):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("successes = %d, want exactly 1", successes.Load())
	}
	if duplicates.Load() != callers-1 {
		t.Errorf("duplicates = %d, want %d", duplicates.Load(), callers-1)
	}
	var count int64
	db.Model(&models.Vote{}).Where("voter_email = ?", "racer@x.com").Count(&count)
	if count != 1 {
		t.Errorf("ledger holds %d rows for the key, want 1", count)
	}
}

func TestTallyAndVoid(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n1 := submitTestNomination(t, noms, models.CategoryCommunityService)
	n2 := submitTestNomination(t, noms, models.CategoryCommunityService)
	advanceToFinalist(t, noms, n1.ID)
	advanceToFinalist(t, noms, n2.ID)

	var flagged *models.Vote
	for i := 0; i < 5; i++ {
		target := n1.ID
		if i >= 3 {
			target = n2.ID
		}
		v, err := votes.CastVote(VoteInput{
			VoterEmail:   fmt.Sprintf("voter%d@x.com", i),
			VoterIP:      "203.0.113.7",
			Category:     models.CategoryCommunityService,
			NominationID: target,
		})
		if err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
		if i == 0 {
			flagged = v
		}
	}

	tally, err := votes.Tally(models.CategoryCommunityService)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally[n1.ID] != 3 || tally[n2.ID] != 2 {
		t.Fatalf("tally = %v, want 3/2", tally)
	}

	// Voiding removes the vote from the tally but not from the ledger
	if _, err := votes.VoidVote(flagged.ID, "ballot-stuffing pattern"); err != nil {
		t.Fatalf("void failed: %v", err)
	}
	var confErr *ConflictError
	if _, err := votes.VoidVote(flagged.ID, "again"); !errors.As(err, &confErr) {
		t.Errorf("double void should conflict, got %v", err)
	}

	tally, _ = votes.Tally(models.CategoryCommunityService)
	if tally[n1.ID] != 2 {
		t.Errorf("voided vote still counted: %v", tally)
	}
	var total int64
	db.Model(&models.Vote{}).Count(&total)
	if total != 5 {
		t.Errorf("ledger shrank to %d rows, votes must never be deleted", total)
	}
}

func TestIPFrequency(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	votes := NewVoteService(db)

	n := submitTestNomination(t, noms, models.CategoryEnvironmentalChampion)
	advanceToFinalist(t, noms, n.ID)

	for i := 0; i < 4; i++ {
		ip := "198.51.100.9"
		if i == 3 {
			ip = "198.51.100.10"
		}
		if _, err := votes.CastVote(VoteInput{
			VoterEmail:   fmt.Sprintf("v%d@x.com", i),
			VoterIP:      ip,
			Category:     models.CategoryEnvironmentalChampion,
			NominationID: n.ID,
		}); err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}

	rows, err := votes.IPFrequency(models.CategoryEnvironmentalChampion)
	if err != nil {
		t.Fatalf("ip frequency failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 distinct IPs, got %d", len(rows))
	}
	if rows[0].VoterIP != "198.51.100.9" || rows[0].Count != 3 {
		t.Errorf("busiest IP = %+v, want 198.51.100.9 with 3", rows[0])
	}
}
