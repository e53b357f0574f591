package retrieval

import (
	"context"
	"log/slog"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// Retriever finds source items semantically close to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]*store.SourceItem, error)
}

// SourceStore is the slice of the store the retriever needs.
type SourceStore interface {
	UpsertSourceItem(ctx context.Context, upsert *store.UpsertSourceItem) (*store.SourceItem, error)
	ListSourceItems(ctx context.Context, find *store.FindSourceItem) ([]*store.SourceItem, error)
	SearchSourceItems(ctx context.Context, search *store.SearchSourceItems) ([]*store.SourceItem, error)
	DeleteSourceItem(ctx context.Context, id string) error
}

// DefaultLimit bounds retrieval when the caller passes none.
const DefaultLimit = 5

// StoreRetriever embeds the query and runs a vector similarity search
// against the store. Retrieval is best-effort: embedding or search
// failures (including drivers without vector support) log a warning
// and return an empty result, never an error, so chat assembly
// proceeds without sources.
type StoreRetriever struct {
	store    SourceStore
	embedder Embedder
}

// NewStoreRetriever wires retrieval against a store and embedder.
func NewStoreRetriever(store SourceStore, embedder Embedder) *StoreRetriever {
	return &StoreRetriever{store: store, embedder: embedder}
}

func (r *StoreRetriever) Retrieve(ctx context.Context, query string, limit int) ([]*store.SourceItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("retrieval_embed_failed", "error", err)
		return []*store.SourceItem{}, nil
	}

	items, err := r.store.SearchSourceItems(ctx, &store.SearchSourceItems{
		Embedding: embedding,
		Limit:     limit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("retrieval_search_failed", "error", err)
		return []*store.SourceItem{}, nil
	}
	return items, nil
}

// Index embeds content and stores it as a retrievable source item.
// An empty id gets a generated one; the id is returned either way.
func (r *StoreRetriever) Index(ctx context.Context, id, content string) (*store.SourceItem, error) {
	if content == "" {
		return nil, errors.New("source content is required")
	}
	if id == "" {
		id = shortuuid.New()
	}

	embedding, err := r.embedder.Embed(ctx, content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed source content")
	}
	return r.store.UpsertSourceItem(ctx, &store.UpsertSourceItem{
		ID:        id,
		Content:   content,
		Embedding: embedding,
	})
}

// Remove deletes a source item from the index.
func (r *StoreRetriever) Remove(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("source id is required")
	}
	return r.store.DeleteSourceItem(ctx, id)
}
