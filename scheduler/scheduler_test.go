package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-ceremony/clock"
	"github.com/joeycumines/go-ceremony/idgen"
	"github.com/joeycumines/go-ceremony/model"
	"github.com/joeycumines/go-ceremony/store"
	"github.com/joeycumines/go-ceremony/store/memstore"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return "timeout-" + string(rune('0'+g.n))
}

func newTestScheduler(t *testing.T) (*Scheduler, *memstore.Store, *clock.Fake) {
	t.Helper()
	st := memstore.New()
	t.Cleanup(st.Close)
	fc := clock.NewFake(10_000_000)
	sch := New(st, fc, &seqIDGen{}, nil, nil)
	return sch, st, fc
}

func putCeremony(t *testing.T, st *memstore.Store, id string, c *model.Ceremony) {
	t.Helper()
	c.ID = id
	fields, err := store.ToFields(c)
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), model.CeremonyPath(id), fields, false))
}

func putCircuit(t *testing.T, st *memstore.Store, ceremonyID string, c *model.Circuit) {
	t.Helper()
	fields, err := store.ToFields(c)
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), model.CircuitPath(ceremonyID, c.ID), fields, false))
}

func putParticipant(t *testing.T, st *memstore.Store, ceremonyID string, p *model.Participant) {
	t.Helper()
	fields, err := store.ToFields(p)
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), model.ParticipantPath(ceremonyID, p.ID), fields, false))
}

func getCircuit(t *testing.T, st *memstore.Store, ceremonyID, circuitID string) *model.Circuit {
	t.Helper()
	doc, err := st.Get(context.Background(), model.CircuitPath(ceremonyID, circuitID))
	require.NoError(t, err)
	var c model.Circuit
	require.NoError(t, store.FromFields(doc.Fields, &c))
	return &c
}

func getParticipant(t *testing.T, st *memstore.Store, ceremonyID, participantID string) *model.Participant {
	t.Helper()
	doc, err := st.Get(context.Background(), model.ParticipantPath(ceremonyID, participantID))
	require.NoError(t, err)
	var p model.Participant
	require.NoError(t, store.FromFields(doc.Fields, &p))
	return &p
}

// TestTick_FixedWindowEvictsPastDeadline covers §4.6's FIXED-timeout
// deadline: contributionStartedAt + fixedTimeWindow minutes.
func TestTick_FixedWindowEvictsPastDeadline(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutFixed,
		Penalty:     30,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID:              "x1",
		FixedTimeWindow: 10, // minutes
		WaitingQueue: model.WaitingQueue{
			Contributors:       []string{"alice", "bob"},
			CurrentContributor: "alice",
		},
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepComputing,
		ContributionStartedAt: now - 11*60_000, // 11 minutes ago, past the 10 minute window
		LastUpdated:           now - 11*60_000,
	})
	putParticipant(t, st, "c1", &model.Participant{ID: "bob", Status: model.StatusWaiting})

	sch.Tick(context.Background())

	circuit := getCircuit(t, st, "c1", "x1")
	assert.Equal(t, "bob", circuit.WaitingQueue.CurrentContributor)
	assert.Equal(t, []string{"bob"}, circuit.WaitingQueue.Contributors)
	assert.EqualValues(t, 1, circuit.WaitingQueue.FailedContributions)

	alice := getParticipant(t, st, "c1", "alice")
	assert.Equal(t, model.StatusTimedOut, alice.Status)

	bob := getParticipant(t, st, "c1", "bob")
	assert.Equal(t, model.StatusWaiting, bob.Status)

	assert.EqualValues(t, 1, sch.Evictions.Load())

	docs, err := st.Query(context.Background(), model.TimeoutsCollection("c1", "alice"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, string(model.TimeoutBlockingContribution), docs[0].Fields["type"])
}

// TestTick_NotYetPastDeadline_NoEviction covers the tie-break: a deadline
// exactly equal to now (not strictly less) must not evict.
func TestTick_NotYetPastDeadline_NoEviction(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutFixed,
		Penalty:     30,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID:              "x1",
		FixedTimeWindow: 10,
		WaitingQueue: model.WaitingQueue{
			Contributors:       []string{"alice"},
			CurrentContributor: "alice",
		},
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepComputing,
		ContributionStartedAt: now - 10*60_000, // exactly at the deadline, not past it
		LastUpdated:           now - 10*60_000,
	})

	sch.Tick(context.Background())

	circuit := getCircuit(t, st, "c1", "x1")
	assert.Equal(t, "alice", circuit.WaitingQueue.CurrentContributor, "exact-equality deadline must not evict")
	assert.EqualValues(t, 0, sch.Evictions.Load())
}

// TestTick_DynamicFirstContributorImmune covers §4.6's rule that the first
// contributor of a DYNAMIC circuit (no baseline average yet) is never
// evicted, regardless of how long it's been.
func TestTick_DynamicFirstContributorImmune(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutDynamic,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID: "x1",
		WaitingQueue: model.WaitingQueue{
			Contributors:       []string{"alice"},
			CurrentContributor: "alice",
		},
		DynamicThreshold: 50,
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepComputing,
		ContributionStartedAt: now - 1_000_000_000,
	})

	sch.Tick(context.Background())

	circuit := getCircuit(t, st, "c1", "x1")
	assert.Equal(t, "alice", circuit.WaitingQueue.CurrentContributor)
	assert.EqualValues(t, 0, sch.Evictions.Load())
}

// TestTick_DynamicEvictsPastAverageWithTolerance covers the DYNAMIC deadline
// formula once a baseline average exists.
func TestTick_DynamicEvictsPastAverageWithTolerance(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutDynamic,
		Penalty:     15,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID: "x1",
		WaitingQueue: model.WaitingQueue{
			Contributors:           []string{"alice"},
			CurrentContributor:     "alice",
			CompletedContributions: 1,
		},
		AvgTimings:       model.AvgTimings{FullContribution: 100_000},
		DynamicThreshold: 50, // deadline = start + 150_000
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepDownloading,
		ContributionStartedAt: now - 150_001,
	})

	sch.Tick(context.Background())

	circuit := getCircuit(t, st, "c1", "x1")
	assert.Equal(t, "", circuit.WaitingQueue.CurrentContributor)
	assert.EqualValues(t, 1, sch.Evictions.Load())
}

// TestTick_VerifyingStallEvictsAsBlockingCloudFunction covers §4.6's
// verification-window deadline and classification.
func TestTick_VerifyingStallEvictsAsBlockingCloudFunction(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutFixed,
		Penalty:     15,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID:              "x1",
		FixedTimeWindow: 10,
		WaitingQueue: model.WaitingQueue{
			Contributors:       []string{"alice"},
			CurrentContributor: "alice",
		},
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepVerifying,
		ContributionStartedAt: now - 2_000,
		VerificationStartedAt: now - 3_541_000, // past the 59 minute window
	})

	sch.Tick(context.Background())

	docs, err := st.Query(context.Background(), model.TimeoutsCollection("c1", "alice"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, string(model.TimeoutBlockingCloudFunction), docs[0].Fields["type"])
}

// TestTick_InconsistentQueueIsSkipped covers I1: a circuit whose
// currentContributor doesn't match the queue head must be skipped rather
// than evicted against a stale assumption.
func TestTick_InconsistentQueueIsSkipped(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{
		State:       model.CeremonyOpened,
		EndDate:     now + 1_000_000,
		TimeoutType: model.TimeoutFixed,
	})
	putCircuit(t, st, "c1", &model.Circuit{
		ID:              "x1",
		FixedTimeWindow: 10,
		WaitingQueue: model.WaitingQueue{
			Contributors:       []string{"bob", "alice"},
			CurrentContributor: "alice", // does not match head "bob"
		},
	})
	putParticipant(t, st, "c1", &model.Participant{
		ID:                    "alice",
		Status:                model.StatusContributing,
		ContributionStep:      model.StepComputing,
		ContributionStartedAt: now - 1_000_000,
	})

	sch.Tick(context.Background())

	circuit := getCircuit(t, st, "c1", "x1")
	assert.Equal(t, "alice", circuit.WaitingQueue.CurrentContributor, "must not mutate an inconsistent queue")
	assert.EqualValues(t, 0, sch.Evictions.Load())
	assert.EqualValues(t, 1, sch.SkippedCircuits.Load())
}

// TestTick_EmptyQueueIsSkipped covers the no-current-contributor fast path.
func TestTick_EmptyQueueIsSkipped(t *testing.T) {
	sch, st, fc := newTestScheduler(t)
	now := fc.NowMillis()

	putCeremony(t, st, "c1", &model.Ceremony{State: model.CeremonyOpened, EndDate: now + 1_000_000})
	putCircuit(t, st, "c1", &model.Circuit{ID: "x1"})

	sch.Tick(context.Background())

	assert.EqualValues(t, 0, sch.Evictions.Load())
	assert.EqualValues(t, 0, sch.SkippedCircuits.Load())
}

func TestNew_DefaultsTickInterval(t *testing.T) {
	sch := New(memstore.New(), clock.System, idgen.UUID{}, nil, nil)
	assert.NotZero(t, sch.tickInterval)
}
