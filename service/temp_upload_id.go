package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
	"github.com/joeycumines/go-ceremony/model"
)

// TemporaryStoreCurrentContributionMultiPartUploadId implements §4.4's
// TemporaryStoreCurrentContributionMultiPartUploadId contract.
func (s *Service) TemporaryStoreCurrentContributionMultiPartUploadId(ctx context.Context, caller Caller, ceremonyID, uploadID string) error {
	if err := authenticate(caller); err != nil {
		return err
	}
	if uploadID == "" {
		return ceremonyerr.InvalidArgument("service: uploadId is required")
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
	if !fsm.CanStoreUploadID(p) {
		return ceremonyerr.FailedPrecondition("service: participant %q is not UPLOADING", caller.ID)
	}

	p.TempContributionData.UploadID = uploadID
	p.TempContributionData.Chunks = []model.UploadChunk{}
	p.LastUpdated = s.Clock.NowMillis()

	return s.putParticipant(ctx, ceremony.ID, p)
}
