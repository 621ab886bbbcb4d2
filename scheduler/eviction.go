package scheduler

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-ceremony/model"
	"github.com/joeycumines/go-ceremony/store"
)

const (
	// verificationWindowMillis is the fixed 59-minute allowance for VERIFYING,
	// per §4.6.
	verificationWindowMillis = 3_540_000
)

// tickCircuit implements §4.6 steps 1-5 for one circuit.
func (sch *Scheduler) tickCircuit(ctx context.Context, ceremony *model.Ceremony, circuit *model.Circuit, now int64) {
	currentID := circuit.WaitingQueue.CurrentContributor
	if currentID == "" {
		return
	}

	if ceremony.TimeoutType == model.TimeoutDynamic &&
		circuit.AvgTimings.FullContribution == 0 &&
		circuit.WaitingQueue.CompletedContributions == 0 {
		// first contributor of a dynamic ceremony is never evicted: no
		// baseline to measure against yet.
		return
	}

	if !circuit.WaitingQueue.Consistent() {
		sch.Logger.Warning().
			Str(`ceremonyId`, ceremony.ID).
			Str(`circuitId`, circuit.ID).
			Log(`scheduler: currentContributor does not match queue head, skipping tick for circuit (I1 violated)`)
		sch.SkippedCircuits.Add(1)
		return
	}

	pDoc, err := sch.Store.Get(ctx, model.ParticipantPath(ceremony.ID, currentID))
	if err == store.ErrNotFound {
		sch.Logger.Warning().
			Str(`ceremonyId`, ceremony.ID).
			Str(`circuitId`, circuit.ID).
			Str(`participantId`, currentID).
			Log(`scheduler: current contributor has no participant document`)
		sch.SkippedCircuits.Add(1)
		return
	}
	if err != nil {
		sch.Logger.Warning().Err(err).Str(`participantId`, currentID).Log(`scheduler: failed to load current contributor`)
		sch.SkippedCircuits.Add(1)
		return
	}

	var p model.Participant
	if err := store.FromFields(pDoc.Fields, &p); err != nil {
		sch.Logger.Warning().Err(err).Str(`participantId`, currentID).Log(`scheduler: failed to decode current contributor`)
		sch.SkippedCircuits.Add(1)
		return
	}
	p.ID = currentID

	kind, evict := classify(ceremony, circuit, &p, now)
	if !evict {
		if kind == "" {
			sch.Logger.Warning().
				Str(`ceremonyId`, ceremony.ID).
				Str(`circuitId`, circuit.ID).
				Str(`participantId`, currentID).
				Log(`scheduler: current contributor is missing both deadlines, skipping`)
			sch.SkippedCircuits.Add(1)
		}
		return
	}

	if err := sch.evict(ctx, ceremony, circuit, &p, kind, now); err != nil {
		if err == store.ErrPreconditionFailed {
			sch.Logger.Warning().
				Str(`ceremonyId`, ceremony.ID).
				Str(`circuitId`, circuit.ID).
				Str(`participantId`, currentID).
				Log(`scheduler: eviction batch lost the optimistic race, deferring to next tick`)
			return
		}
		sch.Logger.Warning().Err(err).
			Str(`ceremonyId`, ceremony.ID).
			Str(`circuitId`, circuit.ID).
			Str(`participantId`, currentID).
			Log(`scheduler: eviction batch commit failed`)
		sch.BatchFailures.Add(1)
		return
	}

	sch.Logger.Info().
		Str(`ceremonyId`, ceremony.ID).
		Str(`circuitId`, circuit.ID).
		Str(`participantId`, currentID).
		Str(`type`, string(kind)).
		Log(`participant evicted`)
	sch.Evictions.Add(1)
}

// classify implements §4.6 step 2-4's deadline math and classification.
// The boolean return reports whether eviction should occur at all. kind is
// "" when the participant has no applicable deadline (missing both), and
// otherwise names the deadline that was checked, whether or not it expired.
func classify(ceremony *model.Ceremony, circuit *model.Circuit, p *model.Participant, now int64) (kind model.TimeoutKind, evict bool) {
	switch p.ContributionStep {
	case model.StepDownloading, model.StepComputing, model.StepUploading:
		deadline := contributionDeadline(ceremony, circuit, p)
		return model.TimeoutBlockingContribution, deadline < now

	case model.StepVerifying:
		if p.VerificationStartedAt == 0 {
			// verifying claimed, but never stamped: missing deadline.
			return "", false
		}
		deadline := p.VerificationStartedAt + verificationWindowMillis
		return model.TimeoutBlockingCloudFunction, deadline < now

	default:
		// missing both deadlines (§4.6 tie-break note).
		return "", false
	}
}

// contributionDeadline implements §4.6's two deadline formulas.
func contributionDeadline(ceremony *model.Ceremony, circuit *model.Circuit, p *model.Participant) int64 {
	switch ceremony.TimeoutType {
	case model.TimeoutFixed:
		return p.ContributionStartedAt + circuit.FixedTimeWindow*60_000
	default: // DYNAMIC
		avg := circuit.AvgTimings.FullContribution
		tolerance := avg * circuit.DynamicThreshold / 100
		return p.ContributionStartedAt + avg + tolerance
	}
}

// evict implements §4.6 step 5: a single atomic batch popping the queue,
// updating the circuit, marking the evicted participant TIMEDOUT, and
// creating the Timeout record.
func (sch *Scheduler) evict(ctx context.Context, ceremony *model.Ceremony, circuit *model.Circuit, p *model.Participant, kind model.TimeoutKind, now int64) error {
	newContributors := slices.Delete(slices.Clone(circuit.WaitingQueue.Contributors), 0, 1)
	newCurrent := ""
	if len(newContributors) > 0 {
		newCurrent = newContributors[0]
	}

	b := sch.Store.Batch()

	if newCurrent != "" {
		b.Set(model.ParticipantPath(ceremony.ID, newCurrent), map[string]any{
			"status":      string(model.StatusWaiting),
			"lastUpdated": now,
		}, true)
	}

	b.Set(model.CircuitPath(ceremony.ID, circuit.ID), map[string]any{
		"waitingQueue": map[string]any{
			"contributors":           newContributors,
			"currentContributor":     newCurrent,
			"completedContributions": circuit.WaitingQueue.CompletedContributions,
			"failedContributions":    circuit.WaitingQueue.FailedContributions + 1,
		},
		"lastUpdated": now,
	}, true)

	b.SetIfUnchanged(model.ParticipantPath(ceremony.ID, p.ID), map[string]any{
		"status":      string(model.StatusTimedOut),
		"lastUpdated": now,
	}, p.LastUpdated)

	timeoutID := sch.IDGen.NewID()
	b.Create(model.TimeoutsCollection(ceremony.ID, p.ID)+"/"+timeoutID, map[string]any{
		"id":            timeoutID,
		"ceremonyId":    ceremony.ID,
		"participantId": p.ID,
		"type":          string(kind),
		"startDate":     now,
		"endDate":       now + ceremony.Penalty*60_000,
	})

	return b.Commit(ctx)
}
