package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
)

type stubPersonProfileRepo struct {
	profile           *models.PersonProfile
	lastUpdatePartial repository.UpdatePersonProfileInput
}

func (s *stubPersonProfileRepo) GetByUserID(_ context.Context, _ int64) (*models.PersonProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubPersonProfileRepo) UpdatePartial(
	_ context.Context,
	_ int64,
	req repository.UpdatePersonProfileInput,
) (*models.PersonProfile, error) {
	s.lastUpdatePartial = req
	if s.profile == nil {
		s.profile = &models.PersonProfile{}
	}
	if req.FullName != nil {
		s.profile.FullName = req.FullName
	}
	if req.BirthDate != nil {
		s.profile.BirthDate = req.BirthDate
	}
	if req.Sex != nil {
		s.profile.Sex = req.Sex
	}
	if req.HeightCM != nil {
		s.profile.HeightCM = req.HeightCM
	}
	if req.ActivityLevel != nil {
		s.profile.ActivityLevel = req.ActivityLevel
	}
	if req.Goals != nil {
		s.profile.Goals = req.Goals
	}
	s.profile.OnboardingComplete = s.profile.FullName != nil && s.profile.BirthDate != nil &&
		s.profile.Sex != nil && s.profile.HeightCM != nil && s.profile.ActivityLevel != nil
	return s.profile, nil
}

type stubProfessionalProfileRepo struct {
	profile           *models.ProfessionalProfile
	lastUpdatePartial repository.UpdateProfessionalProfileInput
}

func (s *stubProfessionalProfileRepo) GetByUserID(_ context.Context, _ int64) (*models.ProfessionalProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubProfessionalProfileRepo) UpdatePartial(
	_ context.Context,
	_ int64,
	req repository.UpdateProfessionalProfileInput,
) (*models.ProfessionalProfile, error) {
	s.lastUpdatePartial = req
	if s.profile == nil {
		s.profile = &models.ProfessionalProfile{}
	}
	if req.FullName != nil {
		s.profile.FullName = req.FullName
	}
	if req.Type != nil {
		s.profile.Type = req.Type
	}
	if req.Specializations != nil {
		s.profile.Specializations = req.Specializations
	}
	s.profile.OnboardingComplete = s.profile.FullName != nil && s.profile.Type != nil
	return s.profile, nil
}

func newProfileTestApp(role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	return app
}

func TestPersonOnboardingForwardsAllFields(t *testing.T) {
	personRepo := &stubPersonProfileRepo{profile: &models.PersonProfile{}}
	handler := NewOnboardingHandler(services.NewProfileService(personRepo, &stubProfessionalProfileRepo{}))

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/users/onboarding", handler.PersonOnboarding)

	body := `{"full_name":"Ana Ruiz","birth_date":"1994-05-12","sex":"Female","height_cm":165,"activity_level":"moderate","goals":["lose_weight"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := personRepo.lastUpdatePartial
	if got.Sex == nil || *got.Sex != "female" {
		t.Fatalf("expected sex normalized to female, got %+v", got.Sex)
	}
	if got.BirthDate == nil || got.BirthDate.Format(dateLayout) != "1994-05-12" {
		t.Fatalf("unexpected birth date: %+v", got.BirthDate)
	}
	if !personRepo.profile.OnboardingComplete {
		t.Fatal("expected onboarding to be complete")
	}
}

func TestPersonOnboardingRejectsUnknownActivityLevel(t *testing.T) {
	personRepo := &stubPersonProfileRepo{profile: &models.PersonProfile{}}
	handler := NewOnboardingHandler(services.NewProfileService(personRepo, &stubProfessionalProfileRepo{}))

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/users/onboarding", handler.PersonOnboarding)

	body := `{"full_name":"Ana Ruiz","birth_date":"1994-05-12","sex":"female","height_cm":165,"activity_level":"extreme","goals":["lose_weight"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if personRepo.lastUpdatePartial.FullName != nil {
		t.Fatal("expected repository not to be called")
	}
}

func TestProfessionalOnboardingRejectsUserRole(t *testing.T) {
	handler := NewOnboardingHandler(services.NewProfileService(&stubPersonProfileRepo{}, &stubProfessionalProfileRepo{}))

	app := newProfileTestApp(models.RoleUser, "42")
	app.Post("/api/v1/professionals/onboarding", handler.ProfessionalOnboarding)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/professionals/onboarding", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestPersonProfileUpdateIsPartial(t *testing.T) {
	personRepo := &stubPersonProfileRepo{profile: &models.PersonProfile{}}
	professionalRepo := &stubProfessionalProfileRepo{}
	handler := NewProfileHandler(services.NewProfileService(personRepo, professionalRepo), personRepo, professionalRepo)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Put("/api/v1/users/profile", handler.UpdatePersonProfile)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/profile", strings.NewReader(`{"height_cm":171.5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := personRepo.lastUpdatePartial
	if got.HeightCM == nil || *got.HeightCM != 171.5 {
		t.Fatalf("expected height 171.5, got %+v", got.HeightCM)
	}
	if got.FullName != nil || got.Sex != nil || got.BirthDate != nil {
		t.Fatalf("expected untouched fields to stay nil, got %+v", got)
	}
}

func TestPersonProfileUpdateRejectsFutureBirthDate(t *testing.T) {
	personRepo := &stubPersonProfileRepo{profile: &models.PersonProfile{}}
	professionalRepo := &stubProfessionalProfileRepo{}
	handler := NewProfileHandler(services.NewProfileService(personRepo, professionalRepo), personRepo, professionalRepo)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Put("/api/v1/users/profile", handler.UpdatePersonProfile)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/profile", strings.NewReader(`{"birth_date":"2999-01-01"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestProfessionalProfileUpdateUsesSpecializationsArray(t *testing.T) {
	personRepo := &stubPersonProfileRepo{}
	professionalRepo := &stubProfessionalProfileRepo{profile: &models.ProfessionalProfile{}}
	handler := NewProfileHandler(services.NewProfileService(personRepo, professionalRepo), personRepo, professionalRepo)

	app := newProfileTestApp(models.RoleProfessional, "77")
	app.Put("/api/v1/professionals/profile", handler.UpdateProfessionalProfile)

	body := `{"type":"Nutritionist","specializations":["weight_loss","sports"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/professionals/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := professionalRepo.lastUpdatePartial
	if got.Type == nil || *got.Type != models.ProfessionalTypeNutritionist {
		t.Fatalf("expected normalized type, got %+v", got.Type)
	}
	if got.Specializations == nil || len(*got.Specializations) != 2 {
		t.Fatalf("expected 2 specializations, got %+v", got.Specializations)
	}
}

func TestGetPersonProfileReturnsNotFound(t *testing.T) {
	personRepo := &stubPersonProfileRepo{}
	professionalRepo := &stubProfessionalProfileRepo{}
	handler := NewProfileHandler(services.NewProfileService(personRepo, professionalRepo), personRepo, professionalRepo)

	app := newProfileTestApp(models.RoleUser, "42")
	app.Get("/api/v1/users/profile", handler.GetPersonProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
