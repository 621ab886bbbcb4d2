package firestorestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joeycumines/go-ceremony/store"
)

// Store adapts a *firestore.Client to store.Store.
type Store struct {
	Client *firestore.Client
}

// New wraps an already-initialized Firestore client. Client lifecycle
// (auth, Close) is the caller's responsibility.
func New(client *firestore.Client) *Store {
	return &Store{Client: client}
}

func (x *Store) Get(ctx context.Context, path string) (store.Document, error) {
	snap, err := x.Client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, err
	}
	return store.Document{Path: path, Fields: snap.Data()}, nil
}

func (x *Store) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := x.Client.Doc(path).Set(ctx, fields, opts...)
	return err
}

func (x *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	q := x.Client.Collection(collection).Query
	for _, f := range filters {
		op, err := operator(f.Op)
		if err != nil {
			return nil, err
		}
		q = q.Where(f.Field, op, f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []store.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, store.Document{Path: snap.Ref.Path, Fields: snap.Data()})
	}
	return out, nil
}

func (x *Store) Batch() store.Batch {
	return &batch{client: x.Client}
}

func operator(op store.Op) (string, error) {
	switch op {
	case store.OpEqual, "":
		return "==", nil
	case store.OpGreaterOrEqual:
		return ">=", nil
	case store.OpLessOrEqual:
		return "<=", nil
	default:
		return "", fmt.Errorf("firestorestore: unsupported operator %q", op)
	}
}
