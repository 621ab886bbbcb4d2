package fsm

import (
	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/model"
)

// AdvanceContributionStep advances step by exactly one, per §4.3/§4.4's
// ProgressToNextContributionStep contract. It is a no-op error if step is
// already COMPLETED (or any value outside the declared chain) - I4 forbids
// any further forward motion from there.
func AdvanceContributionStep(step model.ContributionStep) (model.ContributionStep, error) {
	next, ok := step.NextStep()
	if !ok {
		return "", ceremonyerr.FailedPrecondition("fsm: contribution step %q has no successor", step)
	}
	return next, nil
}

// EntersVerifying reports whether step is the point at which
// verificationStartedAt must be stamped.
func EntersVerifying(step model.ContributionStep) bool {
	return step == model.StepVerifying
}

// CanStoreComputationTime implements the guard for
// TemporaryStoreCurrentContributionComputationTime (§4.4): the step must
// currently be COMPUTING.
func CanStoreComputationTime(p *model.Participant) bool {
	return p != nil && p.Status == model.StatusContributing && p.ContributionStep == model.StepComputing
}

// CanStoreUploadID implements the guard for
// TemporaryStoreCurrentContributionMultiPartUploadId: the step must
// currently be UPLOADING.
func CanStoreUploadID(p *model.Participant) bool {
	return p != nil && p.Status == model.StatusContributing && p.ContributionStep == model.StepUploading
}

// CanAppendChunk implements the guard for
// TemporaryStoreCurrentContributionUploadedChunkData: the step must
// currently be UPLOADING.
func CanAppendChunk(p *model.Participant) bool {
	return p != nil && p.Status == model.StatusContributing && p.ContributionStep == model.StepUploading
}

// CanStoreContribution implements the guard for
// PermanentlyStoreCurrentContributionTimeAndHash (§4.4). The source (and
// this spec, per §9's flagged ambiguity) requires step == COMPUTING, not
// VERIFYING/COMPLETED as would make more semantic sense (a hash is only
// known once verification runs) - isCoordinator lets the FINALIZING path
// through regardless of step, per the handler's documented contract.
func CanStoreContribution(p *model.Participant, isCoordinator bool) bool {
	if p == nil {
		return false
	}
	if isCoordinator && p.Status == model.StatusFinalizing {
		return true
	}
	return p.Status == model.StatusContributing && p.ContributionStep == model.StepComputing
}

// Exhume applies the TIMEDOUT -> EXHUMED transition (§4.4's
// CheckParticipantForCeremony contract): the penalty has expired, so the
// participant may retry from the start of a contribution.
func Exhume(p *model.Participant, now int64) {
	p.Status = model.StatusExhumed
	p.ContributionStep = model.StepDownloading
	p.LastUpdated = now
}

// NewParticipant builds the WAITING participant created on a caller's
// first CheckParticipantForCeremony call.
func NewParticipant(id string, now int64) *model.Participant {
	return &model.Participant{
		ID:                   id,
		Status:               model.StatusWaiting,
		ContributionProgress: 0,
		ContributionStep:     model.StepDownloading,
		Contributions:        []model.Contribution{},
		LastUpdated:          now,
	}
}
