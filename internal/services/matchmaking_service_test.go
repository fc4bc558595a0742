package services

import (
	"context"
	"testing"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type stubProfessionalMatcher struct {
	professionals []models.ProfessionalProfile
	lastType      string
}

func (s *stubProfessionalMatcher) ListOnboarded(_ context.Context, professionalType string) ([]models.ProfessionalProfile, error) {
	s.lastType = professionalType
	return s.professionals, nil
}

func TestGetRecommendedProfessionalsSortsByScoreThenRating(t *testing.T) {
	goals := []string{"muscle_gain", "weight_loss"}
	matcher := &stubProfessionalMatcher{
		professionals: []models.ProfessionalProfile{
			buildProfessionalProfile(11, []string{"hypertrophy", "strength_training"}, 4.8, 6, "Strength coach"),
			buildProfessionalProfile(12, []string{"weight_loss"}, 4.9, 4, ""),
			buildProfessionalProfile(13, []string{"yoga"}, 5.0, 10, "Yoga"),
		},
	}
	service := NewMatchmakingService(matcher)

	matched, err := service.GetRecommendedProfessionals(context.Background(), &models.PersonProfile{
		Goals: &goals,
	}, models.ProfessionalTypeCoach, 3)
	if err != nil {
		t.Fatalf("GetRecommendedProfessionals: %v", err)
	}

	if matcher.lastType != models.ProfessionalTypeCoach {
		t.Fatalf("expected coach filter, got %q", matcher.lastType)
	}
	if got := len(matched); got != 3 {
		t.Fatalf("expected 3 professionals, got %d", got)
	}
	if matched[0].UserID != 11 || matched[0].MatchScore != 85 {
		t.Fatalf("expected professional 11 with score 85 first, got %d with score %d", matched[0].UserID, matched[0].MatchScore)
	}
	if matched[1].UserID != 12 || matched[1].MatchScore != 75 {
		t.Fatalf("expected professional 12 with score 75 second, got %d with score %d", matched[1].UserID, matched[1].MatchScore)
	}
	if matched[2].UserID != 13 || matched[2].MatchScore != 45 {
		t.Fatalf("expected professional 13 with score 45 third, got %d with score %d", matched[2].UserID, matched[2].MatchScore)
	}
}

func TestGetRecommendedProfessionalsAppliesLimit(t *testing.T) {
	goals := []string{"weight_loss"}
	service := NewMatchmakingService(&stubProfessionalMatcher{
		professionals: []models.ProfessionalProfile{
			buildProfessionalProfile(1, []string{"weight_loss"}, 4.5, 5, ""),
			buildProfessionalProfile(2, []string{"yoga"}, 4.9, 7, ""),
		},
	})

	matched, err := service.GetRecommendedProfessionals(context.Background(), &models.PersonProfile{Goals: &goals}, "", 1)
	if err != nil {
		t.Fatalf("GetRecommendedProfessionals: %v", err)
	}
	if got := len(matched); got != 1 {
		t.Fatalf("expected 1 professional, got %d", got)
	}
	if matched[0].UserID != 1 {
		t.Fatalf("expected top professional to be 1, got %d", matched[0].UserID)
	}
}

func TestGoalAliasesHandleSynonyms(t *testing.T) {
	goals := []string{"Lose Weight", "healthy-eating"}
	service := NewMatchmakingService(&stubProfessionalMatcher{
		professionals: []models.ProfessionalProfile{
			buildProfessionalProfile(1, []string{"fat_loss", "meal planning"}, 0, 0, ""),
		},
	})

	matched, err := service.GetRecommendedProfessionals(context.Background(), &models.PersonProfile{
		Goals: &goals,
	}, models.ProfessionalTypeNutritionist, 1)
	if err != nil {
		t.Fatalf("GetRecommendedProfessionals: %v", err)
	}

	if got := matched[0].MatchScore; got != 80 {
		t.Fatalf("expected synonym goal match score 80, got %d", got)
	}
}

func TestRecommendationsWithoutProfile(t *testing.T) {
	service := NewMatchmakingService(&stubProfessionalMatcher{
		professionals: []models.ProfessionalProfile{
			buildProfessionalProfile(1, []string{"weight_loss"}, 4.5, 5, ""),
		},
	})

	matched, err := service.GetRecommendedProfessionals(context.Background(), nil, "", 0)
	if err != nil {
		t.Fatalf("GetRecommendedProfessionals: %v", err)
	}
	if matched[0].MatchScore != 35 {
		t.Fatalf("expected score 35 without goals, got %d", matched[0].MatchScore)
	}
}

func buildProfessionalProfile(userID int64, specs []string, rating float64, experience int, bio string) models.ProfessionalProfile {
	professionalType := models.ProfessionalTypeCoach
	profile := models.ProfessionalProfile{
		UserID:             userID,
		Type:               &professionalType,
		Specializations:    &specs,
		Rating:             &rating,
		ExperienceYears:    &experience,
		OnboardingComplete: true,
	}
	if bio != "" {
		profile.Bio = &bio
	}
	return profile
}
