package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/facegate/internal/db"
	"github.com/facegate/facegate/internal/domain"
)

// store is the consumer interface for identity records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query, sortBy string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements the record store over RedisJSON documents.
type Repo struct {
	store  store
	prefix string
}

// New creates an identity record repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the record listing index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        r.indexName(),
		StorageType: db.StorageJSON,
		Prefixes:    []string{r.recordKey("")},
		Fields: []db.IndexField{
			{Name: "$.full_name", Alias: "full_name", Type: db.IndexFieldTag},
			{Name: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric, Sortable: true},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName(), err)
	}
	return nil
}

// Create assigns an identifier and timestamps, then persists the record.
func (r *Repo) Create(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	id := uuid.NewString()
	now := time.Now().UnixMilli()
	created := domain.ReconstructIdentity(id, ident.Attributes(), now, now)

	data, err := json.Marshal(toDoc(created))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("marshal identity: %w", err)
	}

	if err := r.store.JSONSet(ctx, r.recordKey(id), "$", data); err != nil {
		return domain.Identity{}, fmt.Errorf("json.set identity %s: %w: %w", id, domain.ErrRecordCreation, err)
	}

	return created, nil
}

// Get returns an identity record by identifier.
func (r *Repo) Get(ctx context.Context, id string) (domain.Identity, error) {
	raw, err := r.store.JSONGet(ctx, r.recordKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Identity{}, domain.ErrRecordNotFound
		}
		return domain.Identity{}, fmt.Errorf("json.get identity %s: %w", id, err)
	}
	return parseJSONGetResult(raw)
}

// Update overwrites the record and bumps the modification timestamp.
func (r *Repo) Update(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	exists, err := r.store.Exists(ctx, r.recordKey(ident.ID()))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("check exists %s: %w", ident.ID(), err)
	}
	if !exists {
		return domain.Identity{}, domain.ErrRecordNotFound
	}

	updated := domain.ReconstructIdentity(
		ident.ID(), ident.Attributes(), ident.CreatedAt(), time.Now().UnixMilli(),
	)

	data, err := json.Marshal(toDoc(updated))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("marshal identity: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.recordKey(updated.ID()), "$", data); err != nil {
		return domain.Identity{}, fmt.Errorf("json.set identity %s: %w", updated.ID(), err)
	}

	return updated, nil
}

// Delete removes a record. Missing records return domain.ErrRecordNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.recordKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", id, err)
	}
	if !exists {
		return domain.ErrRecordNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del identity %s: %w", id, err)
	}
	return nil
}

// List returns one page of identity records ordered by CreatedAt,
// plus the total record count. A missing index means nothing has been
// enrolled yet.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.Identity, int, error) {
	result, err := r.store.SearchList(ctx, r.indexName(), "*", "created_at", offset, limit, nil)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []domain.Identity{}, 0, nil
		}
		return nil, 0, fmt.Errorf("search identities: %w", err)
	}

	identities := make([]domain.Identity, 0, len(result.Entries))
	for _, entry := range result.Entries {
		ident, err := parseSearchDoc(entry.Fields["$"])
		if err != nil {
			return nil, 0, fmt.Errorf("parse identity %s: %w", entry.Key, err)
		}
		identities = append(identities, ident)
	}

	return identities, result.Total, nil
}

func (r *Repo) recordKey(id string) string {
	return fmt.Sprintf("%sidentity:%s", r.prefix, id)
}

func (r *Repo) indexName() string {
	return r.prefix + "identity-idx"
}
