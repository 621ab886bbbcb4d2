package service

import (
	"context"

	"github.com/joeycumines/go-ceremony/ceremonyerr"
	"github.com/joeycumines/go-ceremony/clock"
	"github.com/joeycumines/go-ceremony/idgen"
	"github.com/joeycumines/go-ceremony/logging"
	"github.com/joeycumines/go-ceremony/model"
	"github.com/joeycumines/go-ceremony/store"
)

type (
	// Claims is the authenticated claim set every RPC receives, per §4.2.
	Claims struct {
		Participant bool
		Coordinator bool
	}

	// Caller is the authenticated identity an RPC is made on behalf of.
	// The zero value represents an unauthenticated request.
	Caller struct {
		ID     string
		Claims Claims
		Authed bool
	}

	// Service implements the six call handlers of §4.4, sharing the store,
	// clock and id generator every handler needs.
	Service struct {
		Store  store.Store
		Clock  clock.Clock
		IDGen  idgen.Generator
		Logger *logging.Logger
	}
)

// New constructs a Service. logger may be nil, in which case a discarding
// logger is used.
func New(st store.Store, clk clock.Clock, idGen idgen.Generator, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{Store: st, Clock: clk, IDGen: idGen, Logger: logger}
}

// authenticate implements §4.2: reject unless the caller carries at least
// one of the participant or coordinator claims.
func authenticate(caller Caller) error {
	if !caller.Authed || (!caller.Claims.Participant && !caller.Claims.Coordinator) {
		return ceremonyerr.Unauthenticated("service: caller is not authenticated as a participant or coordinator")
	}
	return nil
}

// loadOpenCeremony loads the ceremony and rejects unless it's OPENED,
// per §4.4's shared preamble.
func (s *Service) loadOpenCeremony(ctx context.Context, ceremonyID string) (*model.Ceremony, error) {
	if ceremonyID == "" {
		return nil, ceremonyerr.InvalidArgument("service: ceremonyId is required")
	}

	doc, err := s.Store.Get(ctx, model.CeremonyPath(ceremonyID))
	if err == store.ErrNotFound {
		return nil, ceremonyerr.NotFound("service: ceremony %q does not exist", ceremonyID)
	}
	if err != nil {
		return nil, ceremonyerr.Internal(err)
	}

	var c model.Ceremony
	if err := store.FromFields(doc.Fields, &c); err != nil {
		return nil, ceremonyerr.Internal(err)
	}
	c.ID = ceremonyID

	if !c.IsOpen() {
		return nil, ceremonyerr.FailedPrecondition("service: ceremony %q is not OPENED", ceremonyID)
	}
	return &c, nil
}

// loadParticipant loads the participant document for callerID, reporting
// whether it exists at all (CheckParticipantForCeremony is the only
// handler allowed to proceed when it doesn't).
func (s *Service) loadParticipant(ctx context.Context, ceremonyID, callerID string) (*model.Participant, bool, error) {
	path := model.ParticipantPath(ceremonyID, callerID)
	doc, err := s.Store.Get(ctx, path)
	if err == store.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ceremonyerr.Internal(err)
	}

	var p model.Participant
	if err := store.FromFields(doc.Fields, &p); err != nil {
		return nil, false, ceremonyerr.Internal(err)
	}
	p.ID = callerID
	return &p, true, nil
}

// circuitCount returns |circuits| for ceremonyID, per §4.7: "circuits per
// ceremony is obtained via a collection-path query; |circuits| defines
// ceremony completion."
func (s *Service) circuitCount(ctx context.Context, ceremonyID string) (int, error) {
	docs, err := s.Store.Query(ctx, model.CircuitsCollection(ceremonyID))
	if err != nil {
		return 0, ceremonyerr.Internal(err)
	}
	return len(docs), nil
}

// putParticipant persists p as a single merge-write, stamping nothing the
// caller didn't already set - callers are responsible for LastUpdated.
func (s *Service) putParticipant(ctx context.Context, ceremonyID string, p *model.Participant) error {
	fields, err := store.ToFields(p)
	if err != nil {
		return ceremonyerr.Internal(err)
	}
	if err := s.Store.Set(ctx, model.ParticipantPath(ceremonyID, p.ID), fields, true); err != nil {
		return ceremonyerr.Internal(err)
	}
	return nil
}
