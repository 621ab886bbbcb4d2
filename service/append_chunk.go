package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
	"github.com/joeycumines/go-ceremony/model"
)

// TemporaryStoreCurrentContributionUploadedChunkData implements §4.4's
// TemporaryStoreCurrentContributionUploadedChunkData contract: appends one
// chunk acknowledgement, preserving prior chunks.
func (s *Service) TemporaryStoreCurrentContributionUploadedChunkData(ctx context.Context, caller Caller, ceremonyID, eTag string, partNumber int64) error {
	if err := authenticate(caller); err != nil {
		return err
	}
	if partNumber <= 0 {
		return ceremonyerr.InvalidArgument("service: partNumber must be positive")
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
	if !fsm.CanAppendChunk(p) {
		return ceremonyerr.FailedPrecondition("service: participant %q is not UPLOADING", caller.ID)
	}

	p.TempContributionData.Chunks = append(p.TempContributionData.Chunks, model.UploadChunk{
		ETag:       eTag,
		PartNumber: partNumber,
	})
	p.LastUpdated = s.Clock.NowMillis()

	return s.putParticipant(ctx, ceremony.ID, p)
}
