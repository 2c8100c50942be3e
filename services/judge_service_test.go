package services

import (
	"errors"
	"testing"

	"award-nomination-system/models"
)

func judgeCategories(j *models.Judge) map[models.Category]models.JudgeCategoryProgress {
	out := make(map[models.Category]models.JudgeCategoryProgress, len(j.Progress))
	for _, p := range j.Progress {
		out[p.Category] = p
	}
	return out
}

func TestAssignJudgeValidation(t *testing.T) {
	db := setupTestDB(t)
	s := NewJudgeService(db)

	var valErr *ValidationError
	if _, err := s.AssignJudge("user-1", nil, false); !errors.As(err, &valErr) {
		t.Errorf("empty categories should fail, got %v", err)
	}
	_, err := s.AssignJudge("user-1", []models.Category{
		models.CategoryLeadership, "Basket Weaving",
	}, false)
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(valErr.Fields) != 1 || valErr.Fields[0] != "Basket Weaving" {
		t.Errorf("validation error should name the bad category, got %v", valErr.Fields)
	}
}

func TestAssignJudgeMergesIdempotently(t *testing.T) {
	db := setupTestDB(t)
	s := NewJudgeService(db)

	j1, err := s.AssignJudge("user-1", []models.Category{models.CategoryLeadership}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	// Re-assignment adds, never silently removes
	j2, err := s.AssignJudge("user-1", []models.Category{models.CategoryArtsCreativity}, false)
	if err != nil {
		t.Fatalf("re-assign failed: %v", err)
	}
	if j1.ID != j2.ID {
		t.Fatalf("re-assignment created a second judge record")
	}
	cats := judgeCategories(j2)
	if len(cats) != 2 {
		t.Fatalf("expected merged assignment of 2 categories, got %d", len(cats))
	}

	// Same call again changes nothing
	j3, err := s.AssignJudge("user-1", []models.Category{models.CategoryArtsCreativity}, false)
	if err != nil {
		t.Fatalf("repeat assign failed: %v", err)
	}
	if len(j3.Progress) != 2 {
		t.Errorf("idempotent re-assign changed progress rows: %d", len(j3.Progress))
	}

	// Explicit replace removes what's absent from the list
	j4, err := s.AssignJudge("user-1", []models.Category{models.CategoryLeadership}, true)
	if err != nil {
		t.Fatalf("replace assign failed: %v", err)
	}
	cats = judgeCategories(j4)
	if len(cats) != 1 {
		t.Fatalf("replace kept %d categories, want 1", len(cats))
	}
	if _, ok := cats[models.CategoryLeadership]; !ok {
		t.Error("replace removed the wrong category")
	}
}

func TestAssignJudgeSeedsTotalsFromPool(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	s := NewJudgeService(db)

	for i := 0; i < 3; i++ {
		n := submitTestNomination(t, noms, models.CategorySportsExcellence)
		if _, err := noms.AdvanceLifecycle(n.ID, models.StatusUnderReview); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}
	// One still at submitted, not yet part of the judging pool
	submitTestNomination(t, noms, models.CategorySportsExcellence)

	judge, err := s.AssignJudge("user-1", []models.Category{models.CategorySportsExcellence}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	prog := judgeCategories(judge)[models.CategorySportsExcellence]
	if prog.TotalNominations != 3 {
		t.Errorf("seeded total = %d, want 3", prog.TotalNominations)
	}
}

func TestRecordReviewCapsAndCompletes(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	s := NewJudgeService(db)

	for i := 0; i < 3; i++ {
		n := submitTestNomination(t, noms, models.CategoryArtsCreativity)
		if _, err := noms.AdvanceLifecycle(n.ID, models.StatusUnderReview); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}
	judge, err := s.AssignJudge("judge-j", []models.Category{models.CategoryArtsCreativity}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		prog, capped, err := s.RecordReview(judge.ID, models.CategoryArtsCreativity)
		if err != nil {
			t.Fatalf("review %d failed: %v", i, err)
		}
		if capped {
			t.Fatalf("review %d reported capped early", i)
		}
		if prog.ReviewedNominations != i {
			t.Fatalf("reviewed = %d after %d reviews", prog.ReviewedNominations, i)
		}
		if i < 3 && prog.CompletedAt != nil {
			t.Fatalf("CompletedAt set before the cap (at %d/3)", i)
		}
		if i == 3 && prog.CompletedAt == nil {
			t.Fatal("CompletedAt not set at 3/3")
		}
	}

	// A fourth call leaves the counters alone and signals the cap
	prog, capped, err := s.RecordReview(judge.ID, models.CategoryArtsCreativity)
	if err != nil {
		t.Fatalf("capped review errored: %v", err)
	}
	if !capped {
		t.Error("expected capped=true past the total")
	}
	if prog.ReviewedNominations != 3 {
		t.Errorf("reviewed = %d after capped call, want 3", prog.ReviewedNominations)
	}
}

func TestRecordReviewNotAssigned(t *testing.T) {
	db := setupTestDB(t)
	s := NewJudgeService(db)

	judge, err := s.AssignJudge("judge-j", []models.Category{models.CategoryLeadership}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	var naErr *NotAssignedError
	if _, _, err := s.RecordReview(judge.ID, models.CategorySportsExcellence); !errors.As(err, &naErr) {
		t.Errorf("expected NotAssignedError, got %v", err)
	}
}

func TestRecomputeTotalsReopensCompletion(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	s := NewJudgeService(db)

	n := submitTestNomination(t, noms, models.CategoryRisingStar)
	if _, err := noms.AdvanceLifecycle(n.ID, models.StatusUnderReview); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	judge, err := s.AssignJudge("judge-j", []models.Category{models.CategoryRisingStar}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	prog, _, err := s.RecordReview(judge.ID, models.CategoryRisingStar)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if prog.CompletedAt == nil {
		t.Fatal("1/1 should be complete")
	}

	// A new nomination enters review; recompute raises the total and clears
	// CompletedAt without touching the reviewed count.
	n2 := submitTestNomination(t, noms, models.CategoryRisingStar)
	if _, err := noms.AdvanceLifecycle(n2.ID, models.StatusUnderReview); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if err := s.RecomputeTotals(models.CategoryRisingStar); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	judge, _ = s.GetJudge(judge.ID)
	got := judgeCategories(judge)[models.CategoryRisingStar]
	if got.TotalNominations != 2 {
		t.Errorf("total = %d after recompute, want 2", got.TotalNominations)
	}
	if got.ReviewedNominations != 1 {
		t.Errorf("recompute changed reviewed count to %d", got.ReviewedNominations)
	}
	if got.CompletedAt != nil {
		t.Error("CompletedAt should be cleared when the total grows")
	}

	// Recompute is idempotent
	if err := s.RecomputeTotals(models.CategoryRisingStar); err != nil {
		t.Fatalf("second recompute failed: %v", err)
	}
	judge, _ = s.GetJudge(judge.ID)
	again := judgeCategories(judge)[models.CategoryRisingStar]
	if again.TotalNominations != got.TotalNominations || again.ReviewedNominations != got.ReviewedNominations {
		t.Error("repeated recompute moved the counters")
	}
}

func TestProgressIsPerJudge(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	s := NewJudgeService(db)

	for i := 0; i < 2; i++ {
		n := submitTestNomination(t, noms, models.CategoryCulturalAmbassador)
		if _, err := noms.AdvanceLifecycle(n.ID, models.StatusUnderReview); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
	}
	j1, err := s.AssignJudge("user-1", []models.Category{models.CategoryCulturalAmbassador}, false)
	if err != nil {
		t.Fatalf("assign j1 failed: %v", err)
	}
	j2, err := s.AssignJudge("user-2", []models.Category{models.CategoryCulturalAmbassador}, false)
	if err != nil {
		t.Fatalf("assign j2 failed: %v", err)
	}

	if _, _, err := s.RecordReview(j1.ID, models.CategoryCulturalAmbassador); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	j1, _ = s.GetJudge(j1.ID)
	j2, _ = s.GetJudge(j2.ID)
	if judgeCategories(j1)[models.CategoryCulturalAmbassador].ReviewedNominations != 1 {
		t.Error("j1 review not counted")
	}
	if judgeCategories(j2)[models.CategoryCulturalAmbassador].ReviewedNominations != 0 {
		t.Error("j1's review leaked into j2's counter")
	}
}

func TestReviewQueue(t *testing.T) {
	db := setupTestDB(t)
	noms := NewNominationService(db)
	s := NewJudgeService(db)

	inQueue := submitTestNomination(t, noms, models.CategoryAcademicExcellence)
	if _, err := noms.AdvanceLifecycle(inQueue.ID, models.StatusUnderReview); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	submitTestNomination(t, noms, models.CategoryAcademicExcellence) // still submitted
	other := submitTestNomination(t, noms, models.CategoryLeadership)
	if _, err := noms.AdvanceLifecycle(other.ID, models.StatusUnderReview); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	judge, err := s.AssignJudge("user-1", []models.Category{models.CategoryAcademicExcellence}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	queue, err := s.ReviewQueue(judge.ID)
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != inQueue.ID {
		t.Errorf("queue = %d entries, want only the under-review nomination in the assigned category", len(queue))
	}
}

func TestSetJudgeStatus(t *testing.T) {
	db := setupTestDB(t)
	s := NewJudgeService(db)

	judge, err := s.AssignJudge("user-1", []models.Category{models.CategoryLeadership}, false)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	updated, err := s.SetJudgeStatus(judge.ID, "inactive")
	if err != nil {
		t.Fatalf("status toggle failed: %v", err)
	}
	if updated.Status != "inactive" {
		t.Errorf("status = %q, want inactive", updated.Status)
	}
	if _, err := s.SetJudgeStatus(judge.ID, "retired"); err == nil {
		t.Error("unknown status should fail validation")
	}
	if _, err := s.SetJudgeStatus("missing", "active"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
