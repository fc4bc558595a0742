package handlers

import "github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// pageParams reads page and limit query values, clamping limit.
func pageParams(rawPage, rawLimit string) (page int, limit int) {
	page = parsePositiveInt(rawPage, 1)
	limit = parsePositiveInt(rawLimit, defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
