package repository

import (
	"context"
	"database/sql"

	"github.com/easybill/easybill/internal/model"
)

// SettingsRepo reads and writes the flat key/value settings table.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo constructs a SettingsRepo with the given DB handle.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetAll loads every setting into a map.
func (r *SettingsRepo) GetAll(ctx context.Context) (model.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSettings(rows)
}

// GetAllTx loads every setting inside an existing transaction. The
// sequence allocator reads its policy this way so numbering and the
// order insert observe one consistent snapshot.
func (r *SettingsRepo) GetAllTx(ctx context.Context, tx *sql.Tx) (model.Settings, error) {
	rows, err := tx.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSettings(rows)
}

// Save upserts the provided keys in one transaction; keys not present
// are left untouched.
func (r *SettingsRepo) Save(ctx context.Context, values model.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO settings (key, value) VALUES (?, ?)
	           ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, q, key, value); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetTx upserts one key inside an existing transaction.
func (r *SettingsRepo) SetTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	const q = `INSERT INTO settings (key, value) VALUES (?, ?)
	           ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := tx.ExecContext(ctx, q, key, value)
	return err
}

func scanSettings(rows *sql.Rows) (model.Settings, error) {
	settings := make(model.Settings)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
