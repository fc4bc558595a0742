package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

var (
	errInvalidNumber = errors.New("invalid number")
	errInvalidDate   = errors.New("invalid date")
	errInvalidBool   = errors.New("invalid bool")
)

func parseProfileUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return parseUserIDString(userIDStr)
}

func parseUserIDString(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return userID, nil
}

// actorFromLocals returns the authenticated user id and role.
func actorFromLocals(c *fiber.Ctx) (int64, string, bool) {
	role, ok := c.Locals("role").(string)
	if !ok {
		return 0, "", false
	}
	userID, err := parseProfileUserID(c)
	if err != nil {
		return 0, "", false
	}
	return userID, role, true
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	value, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// parseDate reads a YYYY-MM-DD value as midnight in loc. Empty input yields
// the zero time.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	value, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return value, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errInvalidBool
	}
	return &value, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func stringSliceValue(value *[]string) []string {
	if value == nil {
		return []string{}
	}
	return *value
}

func floatValueResponse(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValueResponse(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
