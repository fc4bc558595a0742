package repository

import (
	"context"
	"time"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type UpdatePersonProfileInput struct {
	FullName      *string
	BirthDate     *time.Time
	Sex           *string
	HeightCM      *float64
	ActivityLevel *string
	Goals         *[]string
}

type PersonProfileRepository struct {
	db DBTX
}

func NewPersonProfileRepository(db DBTX) *PersonProfileRepository {
	return &PersonProfileRepository{db: db}
}

const personProfileColumns = `id, user_id, full_name, birth_date, sex, height_cm, activity_level,
		goals, onboarding_complete, created_at, updated_at`

func (r *PersonProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO person_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *PersonProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.PersonProfile, error) {
	query := `SELECT ` + personProfileColumns + ` FROM person_profiles WHERE user_id = $1`
	return scanPersonProfile(r.db.QueryRow(ctx, query, userID))
}

// UpdatePartial applies the non-nil fields; the profile counts as onboarded
// once name, sex and height are known.
func (r *PersonProfileRepository) UpdatePartial(
	ctx context.Context,
	userID int64,
	input UpdatePersonProfileInput,
) (*models.PersonProfile, error) {
	query := `
		UPDATE person_profiles
		SET full_name = COALESCE($1, full_name),
			birth_date = COALESCE($2, birth_date),
			sex = COALESCE($3, sex),
			height_cm = COALESCE($4, height_cm),
			activity_level = COALESCE($5, activity_level),
			goals = COALESCE($6, goals),
			onboarding_complete = (COALESCE($1, full_name) IS NOT NULL
				AND COALESCE($3, sex) IS NOT NULL
				AND COALESCE($4, height_cm) IS NOT NULL),
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING ` + personProfileColumns
	return scanPersonProfile(r.db.QueryRow(ctx, query,
		input.FullName,
		input.BirthDate,
		input.Sex,
		input.HeightCM,
		input.ActivityLevel,
		input.Goals,
		userID,
	))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersonProfile(row rowScanner) (*models.PersonProfile, error) {
	var profile models.PersonProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.BirthDate,
		&profile.Sex,
		&profile.HeightCM,
		&profile.ActivityLevel,
		&profile.Goals,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
