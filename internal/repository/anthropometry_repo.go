package repository

import (
	"context"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type CreateAnthropometryInput struct {
	UserID     int64
	WeightKG   float64
	WaistCM    *float64
	NeckCM     *float64
	HipCM      *float64
	BodyFatPct *float64
	BMI        *float64
	MeasuredAt time.Time
}

type AnthropometryListFilter struct {
	UserID int64
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type AnthropometryRepository struct {
	db DBTX
}

func NewAnthropometryRepository(db DBTX) *AnthropometryRepository {
	return &AnthropometryRepository{db: db}
}

const anthropometryColumns = `id, user_id, weight_kg, waist_cm, neck_cm, hip_cm, body_fat_pct, bmi, measured_at, created_at`

func (r *AnthropometryRepository) Create(
	ctx context.Context,
	input CreateAnthropometryInput,
) (*models.Anthropometry, error) {
	query := `
		INSERT INTO anthropometries (user_id, weight_kg, waist_cm, neck_cm, hip_cm, body_fat_pct, bmi, measured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + anthropometryColumns
	return scanAnthropometry(r.db.QueryRow(ctx, query,
		input.UserID,
		input.WeightKG,
		input.WaistCM,
		input.NeckCM,
		input.HipCM,
		input.BodyFatPct,
		input.BMI,
		input.MeasuredAt,
	))
}

func (r *AnthropometryRepository) List(
	ctx context.Context,
	filter AnthropometryListFilter,
) ([]models.Anthropometry, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM anthropometries
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR measured_at >= $2)
		  AND ($3::timestamptz IS NULL OR measured_at < $3)
	`
	if err := r.db.QueryRow(ctx, countQuery, filter.UserID, filter.From, filter.To).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + anthropometryColumns + `
		FROM anthropometries
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR measured_at >= $2)
		  AND ($3::timestamptz IS NULL OR measured_at < $3)
		ORDER BY measured_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, filter.UserID, filter.From, filter.To, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]models.Anthropometry, 0)
	for rows.Next() {
		record, err := scanAnthropometry(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *AnthropometryRepository) Latest(ctx context.Context, userID int64) (*models.Anthropometry, error) {
	query := `
		SELECT ` + anthropometryColumns + `
		FROM anthropometries
		WHERE user_id = $1
		ORDER BY measured_at DESC, id DESC
		LIMIT 1
	`
	return scanAnthropometry(r.db.QueryRow(ctx, query, userID))
}

// Bounds returns the earliest and latest measurement inside [from, to).
func (r *AnthropometryRepository) Bounds(
	ctx context.Context,
	userID int64,
	from time.Time,
	to time.Time,
) (first *models.Anthropometry, last *models.Anthropometry, err error) {
	firstQuery := `
		SELECT ` + anthropometryColumns + `
		FROM anthropometries
		WHERE user_id = $1 AND measured_at >= $2 AND measured_at < $3
		ORDER BY measured_at ASC, id ASC
		LIMIT 1
	`
	first, err = scanAnthropometry(r.db.QueryRow(ctx, firstQuery, userID, from, to))
	if err != nil {
		return nil, nil, err
	}

	lastQuery := `
		SELECT ` + anthropometryColumns + `
		FROM anthropometries
		WHERE user_id = $1 AND measured_at >= $2 AND measured_at < $3
		ORDER BY measured_at DESC, id DESC
		LIMIT 1
	`
	last, err = scanAnthropometry(r.db.QueryRow(ctx, lastQuery, userID, from, to))
	if err != nil {
		return nil, nil, err
	}
	return first, last, nil
}

func scanAnthropometry(row rowScanner) (*models.Anthropometry, error) {
	var record models.Anthropometry
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.WeightKG,
		&record.WaistCM,
		&record.NeckCM,
		&record.HipCM,
		&record.BodyFatPct,
		&record.BMI,
		&record.MeasuredAt,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
