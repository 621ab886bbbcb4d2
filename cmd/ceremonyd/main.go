// Command ceremonyd runs the eviction scheduler loop (§4.6) against a
// configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/joeycumines/logiface"

	"github.com/joeycumines/go-ceremony/clock"
	"github.com/joeycumines/go-ceremony/idgen"
	"github.com/joeycumines/go-ceremony/logging"
	"github.com/joeycumines/go-ceremony/scheduler"
	"github.com/joeycumines/go-ceremony/store"
	"github.com/joeycumines/go-ceremony/store/firestorestore"
	"github.com/joeycumines/go-ceremony/store/memstore"
)

func main() {
	var (
		projectID    = flag.String("project", os.Getenv("CEREMONY_PROJECT"), "GCP project id backing the Firestore store; empty runs an in-memory store instead")
		tickInterval = flag.Duration("tick", time.Minute, "eviction scheduler tick interval")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if err := run(*projectID, *tickInterval, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(projectID string, tickInterval time.Duration, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := logiface.LevelInformational
	if verbose {
		level = logiface.LevelDebug
	}
	logger := logging.New(os.Stderr, level)

	st, closeStore, err := newStore(ctx, projectID)
	if err != nil {
		return fmt.Errorf("ceremonyd: %w", err)
	}
	defer closeStore()

	sch := scheduler.New(st, clock.System, idgen.UUID{}, logger, &scheduler.Config{
		TickInterval: tickInterval,
	})

	logger.Info().Log("ceremonyd: starting eviction scheduler")
	err = sch.Run(ctx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("ceremonyd: scheduler exited: %w", err)
	}
	logger.Info().Log("ceremonyd: stopped")
	return nil
}

// newStore picks the production Firestore-backed store when projectID is
// set, and an in-memory one otherwise - useful for local smoke testing
// without GCP credentials.
func newStore(ctx context.Context, projectID string) (store.Store, func(), error) {
	if projectID == "" {
		ms := memstore.New()
		return ms, ms.Close, nil
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	fs := &firestorestore.Store{Client: client}
	return fs, func() { _ = client.Close() }, nil
}
