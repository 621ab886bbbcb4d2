package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
	"github.com/joeycumines/go-ceremony/model"
)

// ProgressToNextContributionStep implements §4.4's
// ProgressToNextContributionStep contract: advance the caller's
// contributionStep by exactly one, stamping verificationStartedAt on entry
// to VERIFYING.
func (s *Service) ProgressToNextContributionStep(ctx context.Context, caller Caller, ceremonyID string) error {
	if err := authenticate(caller); err != nil {
		return err
	}

	ceremony, err := s.loadOpenCeremony(ctx, ceremonyID)
	if err != nil {
		return err
	}

	p, exists, err := s.loadParticipant(ctx, ceremonyID, caller.ID)
	if err != nil {
		return err
	}
	if !exists {
		return ceremonyerr.NotFound("service: no participant %q for ceremony %q", caller.ID, ceremonyID)
	}
	if p.Status != model.StatusContributing {
		return ceremonyerr.FailedPrecondition("service: participant %q is not CONTRIBUTING", caller.ID)
	}

	next, err := fsm.AdvanceContributionStep(p.ContributionStep)
	if err != nil {
		return err
	}

	now := s.Clock.NowMillis()
	p.ContributionStep = next
	p.LastUpdated = now
	if fsm.EntersVerifying(next) {
		p.VerificationStartedAt = now
	}

	if err := s.putParticipant(ctx, ceremony.ID, p); err != nil {
		return err
	}
	s.Logger.Info().Str(`ceremonyId`, ceremonyID).Str(`participantId`, caller.ID).Str(`step`, string(next)).Log(`contribution step advanced`)
	return nil
}
