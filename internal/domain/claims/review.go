package claims

import (
	"context"
	"time"
)

// CoordinatorDecide performs the first-stage review. Legal only while the
// claim is Pending; the reviewed-at/comment pair is written exactly once.
func (s *Service) CoordinatorDecide(ctx context.Context, claimID string, decision Decision, comment string) (Claim, error) {
	next, err := coordinatorOutcome(decision)
	if err != nil {
		return Claim{}, err
	}

	claim, err := s.Store.GetClaim(ctx, claimID)
	if err != nil {
		return Claim{}, err
	}
	if !CanTransition(claim.Status, next) {
		return Claim{}, ErrInvalidTransition
	}

	now := time.Now().UTC()
	fields := ReviewFields{CoordinatorReviewedAt: &now, CoordinatorComment: &comment}
	if err := s.Store.UpdateClaimStatus(ctx, claimID, claim.Version, next, fields); err != nil {
		return Claim{}, err
	}
	return s.Store.GetClaim(ctx, claimID)
}

// ManagerDecide performs the second-stage review on a coordinator-approved
// claim.
func (s *Service) ManagerDecide(ctx context.Context, claimID string, decision Decision, comment string) (Claim, error) {
	next, err := managerOutcome(decision)
	if err != nil {
		return Claim{}, err
	}

	claim, err := s.Store.GetClaim(ctx, claimID)
	if err != nil {
		return Claim{}, err
	}
	if !CanTransition(claim.Status, next) {
		return Claim{}, ErrInvalidTransition
	}

	now := time.Now().UTC()
	fields := ReviewFields{ManagerReviewedAt: &now, ManagerComment: &comment}
	if err := s.Store.UpdateClaimStatus(ctx, claimID, claim.Version, next, fields); err != nil {
		return Claim{}, err
	}
	return s.Store.GetClaim(ctx, claimID)
}

// Finalize moves a manager-approved claim to Processed. This is a distinct
// step rather than a side effect of manager approval.
func (s *Service) Finalize(ctx context.Context, claimID string) (Claim, error) {
	claim, err := s.Store.GetClaim(ctx, claimID)
	if err != nil {
		return Claim{}, err
	}
	if !CanTransition(claim.Status, StatusProcessed) {
		return Claim{}, ErrInvalidTransition
	}

	if err := s.Store.UpdateClaimStatus(ctx, claimID, claim.Version, StatusProcessed, ReviewFields{}); err != nil {
		return Claim{}, err
	}
	return s.Store.GetClaim(ctx, claimID)
}

func coordinatorOutcome(decision Decision) (Status, error) {
	switch decision {
	case DecisionApprove:
		return StatusCoordinatorApproved, nil
	case DecisionReject:
		return StatusCoordinatorRejected, nil
	default:
		return "", ErrInvalidDecision
	}
}

func managerOutcome(decision Decision) (Status, error) {
	switch decision {
	case DecisionApprove:
		return StatusManagerApproved, nil
	case DecisionReject:
		return StatusManagerRejected, nil
	default:
		return "", ErrInvalidDecision
	}
}
