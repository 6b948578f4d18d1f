package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	errors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Bun is a durable TokenStore over a single-column kv table. It is what
// the admin client uses so a session survives a restart.
type Bun struct {
	db *bun.DB
}

// OpenSQLite opens a sqlite-backed Bun database at the given DSN.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to open credential database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewBun wraps an existing Bun database. Call Init before first use.
func NewBun(db *bun.DB) *Bun {
	return &Bun{db: db}
}

// Init creates the credentials table when it does not exist yet.
func (b *Bun) Init(ctx context.Context) error {
	if _, err := b.db.NewCreateTable().
		Model((*credentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to create credentials table")
	}
	return nil
}

// Get returns the stored value for key, empty when absent.
func (b *Bun) Get(ctx context.Context, key string) (string, error) {
	record := new(credentialRecord)
	err := b.db.NewSelect().
		Model(record).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CategoryOperation, "failed to read credential")
	}
	return record.Value, nil
}

// Set writes or replaces the value for key.
func (b *Bun) Set(ctx context.Context, key, value string) error {
	record := &credentialRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	if _, err := b.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to persist credential")
	}
	return nil
}

// Remove deletes the value for key. Removing an absent key is not an error.
func (b *Bun) Remove(ctx context.Context, key string) error {
	if _, err := b.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("key = ?", key).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to remove credential")
	}
	return nil
}
