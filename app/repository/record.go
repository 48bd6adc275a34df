package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
)

// RecordRepository reads commit signatures from a gitbase server speaking the MySQL protocol.
type RecordRepository struct {
	db DBTX
}

func NewRecordRepository(db DBTX) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) FindAll(ctx context.Context) ([]entity.Record, error) {
	query := `
		SELECT DISTINCT repository_id, commit_author_name, commit_author_email
		FROM commits
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]entity.Record, 0)
	for rows.Next() {
		var record entity.Record
		if err := rows.Scan(&record.Repository, &record.Name, &record.Email); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
