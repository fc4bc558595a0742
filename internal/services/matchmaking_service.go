package services

import (
	"context"
	"sort"
	"strings"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
)

type ProfessionalMatcher interface {
	ListOnboarded(ctx context.Context, professionalType string) ([]models.ProfessionalProfile, error)
}

type MatchmakingService struct {
	professionalRepo ProfessionalMatcher
}

func NewMatchmakingService(professionalRepo ProfessionalMatcher) *MatchmakingService {
	return &MatchmakingService{professionalRepo: professionalRepo}
}

// GetRecommendedProfessionals ranks onboarded professionals of the given type
// (any type when empty) by how well they fit the person's goals.
func (s *MatchmakingService) GetRecommendedProfessionals(
	ctx context.Context,
	personProfile *models.PersonProfile,
	professionalType string,
	limit int,
) ([]models.ProfessionalWithScore, error) {
	professionals, err := s.professionalRepo.ListOnboarded(ctx, professionalType)
	if err != nil {
		return nil, err
	}

	matched := make([]models.ProfessionalWithScore, 0, len(professionals))
	for _, professional := range professionals {
		matched = append(matched, models.ProfessionalWithScore{
			ProfessionalProfile: professional,
			MatchScore:          calculateMatchScore(personProfile, &professional),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return floatValue(matched[i].Rating) > floatValue(matched[j].Rating)
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func calculateMatchScore(personProfile *models.PersonProfile, professional *models.ProfessionalProfile) int {
	score := 0
	goalTags := goalAliases(personProfile)
	specializations := normalizeValues(professional.Specializations)

	for _, aliases := range goalTags {
		for _, alias := range aliases {
			if _, ok := specializations[alias]; ok {
				score += 40
				break
			}
		}
	}

	if floatValue(professional.Rating) > 4.0 {
		score += 20
	}
	if intValue(professional.ExperienceYears) > 3 {
		score += 15
	}
	if professional.Bio != nil && strings.TrimSpace(*professional.Bio) != "" {
		score += 10
	}

	return score
}

func goalAliases(personProfile *models.PersonProfile) map[string][]string {
	goals := sliceValue(nil)
	if personProfile != nil {
		goals = sliceValue(personProfile.Goals)
	}

	mapped := make(map[string][]string, len(goals))
	for _, goal := range goals {
		switch normalize(goal) {
		case "weight_loss", "fat_loss", "lose_weight":
			mapped["weight_loss"] = []string{"weight_loss", "fat_loss", "caloric_deficit"}
		case "weight_gain", "muscle_gain", "gain_weight":
			mapped["weight_gain"] = []string{"weight_gain", "muscle_gain", "hypertrophy", "strength_training"}
		case "healthy_eating", "nutrition":
			mapped["nutrition"] = []string{"nutrition", "healthy_eating", "meal_planning"}
		case "endurance", "cardio":
			mapped["endurance"] = []string{"endurance", "cardio", "running"}
		default:
			if key := normalize(goal); key != "" {
				mapped[key] = []string{key}
			}
		}
	}

	return mapped
}

func normalizeValues(values *[]string) map[string]struct{} {
	normalized := make(map[string]struct{})
	for _, value := range sliceValue(values) {
		if key := normalize(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func normalize(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func sliceValue(values *[]string) []string {
	if values == nil {
		return nil
	}
	return *values
}

func floatValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
