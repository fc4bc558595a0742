package repository

import (
	"context"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type StepRecordRepository struct {
	db DBTX
}

func NewStepRecordRepository(db DBTX) *StepRecordRepository {
	return &StepRecordRepository{db: db}
}

// Upsert overwrites the day's total, so replaying the same value is harmless.
func (r *StepRecordRepository) Upsert(ctx context.Context, userID int64, day time.Time, steps int) error {
	query := `
		INSERT INTO step_records (user_id, day, steps, synced_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, day)
		DO UPDATE SET steps = EXCLUDED.steps, synced_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, userID, day, steps)
	return err
}

func (r *StepRecordRepository) ListRange(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]models.StepRecord, error) {
	query := `
		SELECT user_id, day, steps, synced_at
		FROM step_records
		WHERE user_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.StepRecord, 0)
	for rows.Next() {
		var record models.StepRecord
		if err := rows.Scan(&record.UserID, &record.Day, &record.Steps, &record.SyncedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Totals returns the step sum and the number of recorded days in [from, to].
func (r *StepRecordRepository) Totals(ctx context.Context, userID int64, from, to time.Time) (int64, int, error) {
	query := `
		SELECT COALESCE(SUM(steps), 0), COUNT(*)
		FROM step_records
		WHERE user_id = $1 AND day >= $2 AND day <= $3
	`
	var (
		total int64
		days  int
	)
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&total, &days); err != nil {
		return 0, 0, err
	}
	return total, days, nil
}
