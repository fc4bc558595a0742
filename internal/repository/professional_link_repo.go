package repository

import (
	"context"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type ProfessionalLinkRepository struct {
	db DBTX
}

func NewProfessionalLinkRepository(db DBTX) *ProfessionalLinkRepository {
	return &ProfessionalLinkRepository{db: db}
}

// Upsert replaces the user's professional of the given type.
func (r *ProfessionalLinkRepository) Upsert(
	ctx context.Context,
	userID int64,
	linkType string,
	professionalID int64,
) (*models.ProfessionalLink, error) {
	query := `
		INSERT INTO user_professionals (user_id, type, professional_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, type)
		DO UPDATE SET professional_id = EXCLUDED.professional_id, created_at = NOW()
		RETURNING user_id, type, professional_id, created_at
	`
	var link models.ProfessionalLink
	err := r.db.QueryRow(ctx, query, userID, linkType, professionalID).
		Scan(&link.UserID, &link.Type, &link.ProfessionalID, &link.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ProfessionalLinkRepository) Delete(ctx context.Context, userID int64, linkType string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_professionals WHERE user_id = $1 AND type = $2`, userID, linkType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfessionalLinkRepository) ListByUser(ctx context.Context, userID int64) ([]models.ProfessionalLink, error) {
	query := `
		SELECT user_id, type, professional_id, created_at
		FROM user_professionals
		WHERE user_id = $1
		ORDER BY type ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]models.ProfessionalLink, 0)
	for rows.Next() {
		var link models.ProfessionalLink
		if err := rows.Scan(&link.UserID, &link.Type, &link.ProfessionalID, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *ProfessionalLinkRepository) IsLinked(ctx context.Context, userID, professionalID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_professionals WHERE user_id = $1 AND professional_id = $2
		)
	`
	var linked bool
	if err := r.db.QueryRow(ctx, query, userID, professionalID).Scan(&linked); err != nil {
		return false, err
	}
	return linked, nil
}

// ListClients returns the users whose link of the given type points at the professional.
func (r *ProfessionalLinkRepository) ListClients(
	ctx context.Context,
	professionalID int64,
	linkType string,
) ([]models.Client, error) {
	query := `
		SELECT u.id, u.email, p.full_name, l.type
		FROM user_professionals l
		JOIN users u ON u.id = l.user_id
		LEFT JOIN person_profiles p ON p.user_id = l.user_id
		WHERE l.professional_id = $1 AND l.type = $2
		ORDER BY u.id ASC
	`
	rows, err := r.db.Query(ctx, query, professionalID, linkType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(&client.UserID, &client.Email, &client.FullName, &client.LinkType); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}
