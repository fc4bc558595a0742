package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type stubMatchmaker struct {
	result   []models.ProfessionalWithScore
	lastType string
	limit    int
}

func (s *stubMatchmaker) GetRecommendedProfessionals(
	_ context.Context,
	_ *models.PersonProfile,
	professionalType string,
	limit int,
) ([]models.ProfessionalWithScore, error) {
	s.lastType = professionalType
	s.limit = limit
	return s.result, nil
}

type stubAssociations struct {
	link          *models.ProfessionalLink
	err           error
	professionals map[string]int64
	clients       []models.Client
	lastUserID    int64
	lastProID     int64
	lastType      string
}

func (s *stubAssociations) AssociateProfessional(_ context.Context, userID, professionalID int64) (*models.ProfessionalLink, error) {
	s.lastUserID = userID
	s.lastProID = professionalID
	return s.link, s.err
}

func (s *stubAssociations) RemoveProfessional(_ context.Context, userID int64, linkType string) error {
	s.lastUserID = userID
	s.lastType = linkType
	return s.err
}

func (s *stubAssociations) ListProfessionals(_ context.Context, userID int64) (map[string]int64, error) {
	s.lastUserID = userID
	return s.professionals, s.err
}

func (s *stubAssociations) ListClients(_ context.Context, professionalID int64) ([]models.Client, error) {
	s.lastProID = professionalID
	return s.clients, s.err
}

func TestGetRecommendedProfessionalsReturnsMatchScores(t *testing.T) {
	name := "Coach Carla"
	coachType := models.ProfessionalTypeCoach
	matcher := &stubMatchmaker{result: []models.ProfessionalWithScore{{
		ProfessionalProfile: models.ProfessionalProfile{ID: 1, UserID: 7, FullName: &name, Type: &coachType},
		MatchScore:          80,
	}}}
	handler := NewProfessionalHandler(
		&stubPersonProfileRepo{profile: &models.PersonProfile{UserID: 42}},
		matcher,
		&stubAssociations{},
	)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/professionals/recommended", handler.GetRecommendedProfessionals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/professionals/recommended?type=coach&limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, models.ProfessionalTypeCoach, matcher.lastType)
	require.Equal(t, 5, matcher.limit)

	var payload struct {
		Professionals []professionalListResponse `json:"professionals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Professionals, 1)
	require.Equal(t, 80, payload.Professionals[0].MatchScore)
	require.Equal(t, "Coach Carla", payload.Professionals[0].FullName)
	require.Empty(t, payload.Professionals[0].Specializations)
}

func TestGetRecommendedProfessionalsRejectsUnknownType(t *testing.T) {
	handler := NewProfessionalHandler(&stubPersonProfileRepo{}, &stubMatchmaker{}, &stubAssociations{})

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/professionals/recommended", handler.GetRecommendedProfessionals)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/professionals/recommended?type=physio", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssociateProfessionalMapsIncompleteProfile(t *testing.T) {
	associations := &stubAssociations{err: services.ErrProfileIncomplete}
	handler := NewProfessionalHandler(&stubPersonProfileRepo{}, &stubMatchmaker{}, associations)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/users/professionals", handler.AssociateProfessional)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/professionals", strings.NewReader(`{"professional_id":7}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.EqualValues(t, 42, associations.lastUserID)
	require.EqualValues(t, 7, associations.lastProID)
}

func TestRemoveProfessionalReturnsNoContent(t *testing.T) {
	associations := &stubAssociations{}
	handler := NewProfessionalHandler(&stubPersonProfileRepo{}, &stubMatchmaker{}, associations)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Delete("/api/v1/users/professionals/:type", handler.RemoveProfessional)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/users/professionals/Nutritionist", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, models.ProfessionalTypeNutritionist, associations.lastType)
}

func TestListClientsRequiresProfessionalRole(t *testing.T) {
	handler := NewProfessionalHandler(&stubPersonProfileRepo{}, &stubMatchmaker{}, &stubAssociations{})

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/professionals/clients", handler.ListClients)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/professionals/clients", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
