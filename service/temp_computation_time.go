package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
)

// TemporaryStoreCurrentContributionComputationTime implements §4.4's
// TemporaryStoreCurrentContributionComputationTime contract.
func (s *Service) TemporaryStoreCurrentContributionComputationTime(ctx context.Context, caller Caller, ceremonyID string, contributionComputationTime int64) error {
	if err := authenticate(caller); err != nil {
		return err
	}
	if contributionComputationTime <= 0 {
		return ceremonyerr.InvalidArgument("service: contributionComputationTime must be positive")
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
	if !fsm.CanStoreComputationTime(p) {
		return ceremonyerr.FailedPrecondition("service: participant %q is not COMPUTING", caller.ID)
	}

	p.TempContributionData.ContributionComputationTime = contributionComputationTime
	p.LastUpdated = s.Clock.NowMillis()

	return s.putParticipant(ctx, ceremony.ID, p)
}
