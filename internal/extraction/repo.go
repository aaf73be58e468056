package extraction

import "context"

// Repo defines persistence for extraction results. Upsert is the only write
// path, keyed by document id.
type Repo interface {
	Upsert(ctx context.Context, result Result) error
	GetByDocument(ctx context.Context, documentID string) (Result, error)
}
