package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
	"github.com/joeycumines/go-ceremony/model"
)

// PermanentlyStoreCurrentContributionTimeAndHash implements §4.4's
// PermanentlyStoreCurrentContributionTimeAndHash contract: accepted when
// contributionStep == COMPUTING, or when the caller carries the
// coordinator claim and status == FINALIZING. See §9 for the guard's
// flagged ambiguity, preserved here per the observed contract.
func (s *Service) PermanentlyStoreCurrentContributionTimeAndHash(ctx context.Context, caller Caller, ceremonyID string, contributionComputationTime int64, contributionHash string) error {
	if err := authenticate(caller); err != nil {
		return err
	}
	if contributionComputationTime <= 0 {
		return ceremonyerr.InvalidArgument("service: contributionComputationTime must be positive")
	}
	if contributionHash == "" {
		return ceremonyerr.InvalidArgument("service: contributionHash is required")
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
	if !fsm.CanStoreContribution(p, caller.Claims.Coordinator) {
		return ceremonyerr.FailedPrecondition("service: participant %q may not permanently store a contribution in its current state", caller.ID)
	}

	p.Contributions = append(p.Contributions, model.Contribution{
		Hash:            contributionHash,
		ComputationTime: contributionComputationTime,
	})
	p.LastUpdated = s.Clock.NowMillis()

	if err := s.putParticipant(ctx, ceremony.ID, p); err != nil {
		return err
	}
	s.Logger.Info().Str(`ceremonyId`, ceremonyID).Str(`participantId`, caller.ID).Int(`contributions`, len(p.Contributions)).Log(`contribution stored`)
	return nil
}
