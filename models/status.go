package models

// NominationStatus is the lifecycle dimension of a nomination. It moves
// submitted → under-review → finalist → winner, with rejection possible once
// review has started. Rejection is permanent and winner is only reachable
// from finalist.
type NominationStatus string

const (
	StatusSubmitted   NominationStatus = "submitted"
	StatusUnderReview NominationStatus = "under-review"
	StatusFinalist    NominationStatus = "finalist"
	StatusWinner      NominationStatus = "winner"
	StatusRejected    NominationStatus = "rejected"
)

var lifecycleGraph = map[NominationStatus][]NominationStatus{
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusFinalist, StatusRejected},
	StatusFinalist:    {StatusWinner, StatusRejected},
	StatusWinner:      {},
	StatusRejected:    {},
}

// Valid reports whether s is a known lifecycle status.
func (s NominationStatus) Valid() bool {
	_, ok := lifecycleGraph[s]
	return ok
}

// CanAdvance reports whether target is a direct successor of s.
func (s NominationStatus) CanAdvance(target NominationStatus) bool {
	for _, next := range lifecycleGraph[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ReviewStatus is the admin-review dimension of a nomination, tracked
// independently of the lifecycle. approved and rejected are terminal; a
// needs-info nomination stays with the nominator until resubmitted or until
// an admin records a further decision.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewNeedsInfo ReviewStatus = "needs-info"
)

// Valid reports whether r is a known review status.
func (r ReviewStatus) Valid() bool {
	switch r {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewNeedsInfo:
		return true
	}
	return false
}

// Terminal reports whether r blocks any further admin decision.
func (r ReviewStatus) Terminal() bool {
	return r == ReviewApproved || r == ReviewRejected
}

// Decision reports whether r is a value an admin may set on a pending or
// needs-info nomination (i.e. anything but pending itself).
func (r ReviewStatus) Decision() bool {
	return r == ReviewApproved || r == ReviewRejected || r == ReviewNeedsInfo
}

// CountsTowardJudging reports whether a nomination in lifecycle status s is
// part of a category's judging workload. Everything at under-review or later
// counts, so per-judge totals never shrink while a category is open.
func (s NominationStatus) CountsTowardJudging() bool {
	return s == StatusUnderReview || s == StatusFinalist || s == StatusWinner || s == StatusRejected
}
