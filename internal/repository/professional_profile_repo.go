package repository

import (
	"context"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type UpdateProfessionalProfileInput struct {
	FullName        *string
	Type            *string
	Bio             *string
	Specializations *[]string
	ExperienceYears *int
}

type ProfessionalProfileRepository struct {
	db DBTX
}

func NewProfessionalProfileRepository(db DBTX) *ProfessionalProfileRepository {
	return &ProfessionalProfileRepository{db: db}
}

const professionalProfileColumns = `id, user_id, full_name, type, bio, specializations,
		experience_years, rating, onboarding_complete, created_at, updated_at`

func (r *ProfessionalProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO professional_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *ProfessionalProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.ProfessionalProfile, error) {
	query := `SELECT ` + professionalProfileColumns + ` FROM professional_profiles WHERE user_id = $1`
	return scanProfessionalProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ProfessionalProfileRepository) UpdatePartial(
	ctx context.Context,
	userID int64,
	input UpdateProfessionalProfileInput,
) (*models.ProfessionalProfile, error) {
	query := `
		UPDATE professional_profiles
		SET full_name = COALESCE($1, full_name),
			type = COALESCE($2, type),
			bio = COALESCE($3, bio),
			specializations = COALESCE($4, specializations),
			experience_years = COALESCE($5, experience_years),
			onboarding_complete = (COALESCE($1, full_name) IS NOT NULL
				AND COALESCE($2, type) IS NOT NULL),
			updated_at = NOW()
		WHERE user_id = $6
		RETURNING ` + professionalProfileColumns
	return scanProfessionalProfile(r.db.QueryRow(ctx, query,
		input.FullName,
		input.Type,
		input.Bio,
		input.Specializations,
		input.ExperienceYears,
		userID,
	))
}

// ListOnboarded returns onboarded professionals, optionally restricted to one type.
func (r *ProfessionalProfileRepository) ListOnboarded(
	ctx context.Context,
	professionalType string,
) ([]models.ProfessionalProfile, error) {
	query := `
		SELECT ` + professionalProfileColumns + `
		FROM professional_profiles
		WHERE onboarding_complete = TRUE
		  AND ($1::text = '' OR type = $1)
		ORDER BY rating DESC NULLS LAST, id ASC
	`
	rows, err := r.db.Query(ctx, query, professionalType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.ProfessionalProfile, 0)
	for rows.Next() {
		profile, err := scanProfessionalProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func scanProfessionalProfile(row rowScanner) (*models.ProfessionalProfile, error) {
	var profile models.ProfessionalProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Type,
		&profile.Bio,
		&profile.Specializations,
		&profile.ExperienceYears,
		&profile.Rating,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
