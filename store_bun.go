package identity

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var deleteStorageRecordSQL = `DELETE FROM "storage_records"
WHERE "record_key" = ?
RETURNING *;`

var upsertStorageRecordSQL = `INSERT INTO "storage_records"
("id", "record_key", "record_value", "created_at", "updated_at")
VALUES (?, ?, ?, current_timestamp, current_timestamp)
ON CONFLICT ("record_key") DO UPDATE
SET "record_value" = excluded."record_value", "updated_at" = current_timestamp
RETURNING *;`

// StorageRecord is the Bun model behind BunStore: one row per logical key.
type StorageRecord struct {
	bun.BaseModel `bun:"table:storage_records,alias:rec"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Key           string     `bun:"record_key,notnull,unique" json:"record_key,omitempty"`
	Value         string     `bun:"record_value" json:"record_value,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func NewStorageRecordsRepository(db *bun.DB) repository.Repository[*StorageRecord] {
	handlers := repository.ModelHandlers[*StorageRecord]{
		NewRecord: func() *StorageRecord { return &StorageRecord{} },
		GetID: func(r *StorageRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *StorageRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "record_key"
		},
	}
	return repository.NewRepository(db, handlers)
}

// BunStore implements Store on a SQL database through Bun. Pair it with the
// sqliteshim driver for a single-file deployment.
type BunStore struct {
	db      *bun.DB
	records repository.Repository[*StorageRecord]
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{
		db:      db,
		records: NewStorageRecordsRepository(db),
	}
}

// Init creates the backing table. Call once at startup.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*StorageRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return wrapStorage(err, "unable to create storage table")
}

func (s *BunStore) Get(ctx context.Context, key string) (string, bool, error) {
	record, err := s.records.GetByIdentifierTx(ctx, s.db, key)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", false, nil
		}
		return "", false, wrapStorage(err, "storage select failed")
	}
	return record.Value, true, nil
}

// Set writes the value in a single statement so concurrent writers cannot
// interleave between a lookup and the write.
func (s *BunStore) Set(ctx context.Context, key, value string) error {
	_, err := s.records.Raw(ctx, upsertStorageRecordSQL, uuid.New().String(), key, value)
	return wrapStorage(err, "storage upsert failed")
}

func (s *BunStore) Remove(ctx context.Context, key string) error {
	// Removing an absent key is a no-op, so the RETURNING result is ignored.
	_, err := s.records.Raw(ctx, deleteStorageRecordSQL, key)
	return wrapStorage(err, "storage delete failed")
}
