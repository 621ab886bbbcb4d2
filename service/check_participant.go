package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/fsm"
	"github.com/joeycumines/go-ceremony/model"
	"github.com/joeycumines/go-ceremony/store"
)

// CheckParticipantForCeremony implements §4.4's CheckParticipantForCeremony
// contract: lazily creates a participant on first contact, reports whether
// the participant has already finished, and rehabilitates a TIMEDOUT
// participant whose penalty has expired.
func (s *Service) CheckParticipantForCeremony(ctx context.Context, caller Caller, ceremonyID string) (bool, error) {
	if err := authenticate(caller); err != nil {
		return false, err
	}

	ceremony, err := s.loadOpenCeremony(ctx, ceremonyID)
	if err != nil {
		return false, err
	}

	p, exists, err := s.loadParticipant(ctx, ceremonyID, caller.ID)
	if err != nil {
		return false, err
	}

	now := s.Clock.NowMillis()

	if !exists {
		np := fsm.NewParticipant(caller.ID, now)
		if err := s.putParticipant(ctx, ceremony.ID, np); err != nil {
			return false, err
		}
		s.Logger.Info().Str(`ceremonyId`, ceremonyID).Str(`participantId`, caller.ID).Log(`participant created`)
		return true, nil
	}

	circuitCount, err := s.circuitCount(ctx, ceremonyID)
	if err != nil {
		return false, err
	}

	if p.IsFinished(circuitCount) {
		return false, nil
	}

	if p.Status == model.StatusTimedOut {
		active, err := s.hasActiveTimeout(ctx, ceremonyID, caller.ID, now)
		if err != nil {
			return false, err
		}
		if active {
			return false, nil
		}

		fsm.Exhume(p, now)
		if err := s.putParticipant(ctx, ceremony.ID, p); err != nil {
			return false, err
		}
		s.Logger.Info().Str(`ceremonyId`, ceremonyID).Str(`participantId`, caller.ID).Log(`participant exhumed`)
		return true, nil
	}

	return true, nil
}

// hasActiveTimeout queries for any Timeout document for (ceremonyID,
// participantID) whose penalty has not yet expired, per §4.4.
func (s *Service) hasActiveTimeout(ctx context.Context, ceremonyID, participantID string, now int64) (bool, error) {
	docs, err := s.Store.Query(ctx, model.TimeoutsCollection(ceremonyID, participantID), store.Filter{
		Field: "endDate",
		Op:    store.OpGreaterOrEqual,
		Value: now,
	})
	if err != nil {
		return false, ceremonyerr.Internal(err)
	}
	return len(docs) > 0, nil
}
