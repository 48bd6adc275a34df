package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR(36) NOT NULL PRIMARY KEY,
		records BIGINT NOT NULL,
		report_json TEXT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS identities (
		run_id VARCHAR(36) NOT NULL,
		identity_id BIGINT NOT NULL,
		names_json TEXT NOT NULL,
		emails_json TEXT NOT NULL,
		PRIMARY KEY (run_id, identity_id)
	)`,
}

// RunRepository stores matching runs and their identities. Works on MySQL and SQLite.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *RunRepository) Save(ctx context.Context, run *entity.Run) error {
	var report sql.NullString
	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return err
		}
		report = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (run_id, records, report_json, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err = tx.ExecContext(ctx, query, run.ID, run.Records, report, run.CreatedAt.UnixNano()); err != nil {
		return err
	}

	if err = insertIdentities(ctx, tx, run.ID, run.Identities); err != nil {
		return err
	}

	return tx.Commit()
}

func insertIdentities(ctx context.Context, db DBTX, runID string, identities *entity.Identities) error {
	if identities == nil {
		return nil
	}

	query := `
		INSERT INTO identities (run_id, identity_id, names_json, emails_json)
		VALUES (?, ?, ?, ?)
	`
	for _, identity := range identities.All() {
		names, err := json.Marshal(identity.Names.Sorted())
		if err != nil {
			return err
		}
		emails, err := json.Marshal(identity.Emails.Sorted())
		if err != nil {
			return err
		}
		if _, err = db.ExecContext(ctx, query, runID, identity.ID, string(names), string(emails)); err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns nil when the run does not exist.
func (r *RunRepository) FindByID(ctx context.Context, runID string) (*entity.Run, error) {
	query := `
		SELECT run_id, records, report_json, created_at
		FROM runs WHERE run_id = ?
	`
	return r.findOne(ctx, query, runID)
}

// FindLatest returns nil when no run was stored yet.
func (r *RunRepository) FindLatest(ctx context.Context) (*entity.Run, error) {
	query := `
		SELECT run_id, records, report_json, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.findOne(ctx, query)
}

func (r *RunRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Run, error) {
	run := &entity.Run{}
	var report sql.NullString
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.Records, &report, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdAt)

	if report.Valid {
		run.Report = &entity.Report{}
		if err := json.Unmarshal([]byte(report.String), run.Report); err != nil {
			return nil, err
		}
	}

	identities, err := r.findIdentities(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Identities = identities
	return run, nil
}

func (r *RunRepository) findIdentities(ctx context.Context, runID string) (*entity.Identities, error) {
	query := `
		SELECT identity_id, names_json, emails_json
		FROM identities WHERE run_id = ?
		ORDER BY identity_id
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	identities := entity.NewIdentities()
	for rows.Next() {
		var id int
		var namesJSON, emailsJSON string
		if err := rows.Scan(&id, &namesJSON, &emailsJSON); err != nil {
			return nil, err
		}

		var names, emails []string
		if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(emailsJSON), &emails); err != nil {
			return nil, err
		}

		identity := identities.GetOrInsert(id)
		for _, name := range names {
			identity.Names.Add(name)
		}
		for _, email := range emails {
			identity.Emails.Add(email)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return identities, nil
}
