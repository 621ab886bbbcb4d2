// Package service implements the six synchronous, authenticated RPC
// handlers of §4.4: CheckParticipantForCeremony,
// ProgressToNextContributionStep,
// TemporaryStoreCurrentContributionComputationTime,
// PermanentlyStoreCurrentContributionTimeAndHash,
// TemporaryStoreCurrentContributionMultiPartUploadId, and
// TemporaryStoreCurrentContributionUploadedChunkData.
//
// Every handler shares the preamble described in §4.4: authenticate,
// validate required inputs, load the ceremony and reject unless it's
// OPENED, load the participant by caller id. That preamble lives once, on
// Service, in service.go.
package service
