package handlers

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/pkg/utils"
)

type AuthHandler struct {
	db                      *pgxpool.Pool
	userRepo                *repository.UserRepository
	personProfileRepo       *repository.PersonProfileRepository
	professionalProfileRepo *repository.ProfessionalProfileRepository
	jwtSecret               string
}

func NewAuthHandler(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	personProfileRepo *repository.PersonProfileRepository,
	professionalProfileRepo *repository.ProfessionalProfileRepository,
	jwtSecret string,
) *AuthHandler {
	return &AuthHandler{
		db:                      db,
		userRepo:                userRepo,
		personProfileRepo:       personProfileRepo,
		professionalProfileRepo: professionalProfileRepo,
		jwtSecret:               jwtSecret,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the account and its empty profile in one transaction.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleProfessional {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
	}

	exists, err := h.userRepo.EmailExists(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to check email"})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to start registration transaction"})
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	if err := repository.NewUserRepository(tx).CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"error": "Email already exists"})
		}
		logrus.WithError(err).Error("create user")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create user"})
	}

	if role == models.RoleUser {
		err = repository.NewPersonProfileRepository(tx).CreateEmpty(c.Context(), user.ID)
	} else {
		err = repository.NewProfessionalProfileRepository(tx).CreateEmpty(c.Context(), user.ID)
	}
	if err != nil {
		logrus.WithError(err).WithField("role", role).Error("create empty profile")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create profile"})
	}

	if err := tx.Commit(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to finalize registration"})
	}

	return h.respondWithToken(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}

	user, err := h.userRepo.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup user"})
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "Invalid email or password"})
	}

	return h.respondWithToken(c, fiber.StatusOK, user)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, role, ok := actorFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	user, err := h.userRepo.GetByIDAndRole(c.Context(), userID, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	var (
		profile    any
		onboarded  bool
		profileErr error
	)
	if role == models.RoleUser {
		personProfile, err := h.personProfileRepo.GetByUserID(c.Context(), userID)
		if err == nil {
			profile, onboarded = personProfile, personProfile.OnboardingComplete
		}
		profileErr = err
	} else {
		professionalProfile, err := h.professionalProfileRepo.GetByUserID(c.Context(), userID)
		if err == nil {
			profile, onboarded = professionalProfile, professionalProfile.OnboardingComplete
		}
		profileErr = err
	}
	if profileErr != nil {
		if errors.Is(profileErr, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"user":                userResponse(user),
		"profile":             profile,
		"onboarding_complete": onboarded,
	})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), user.Role, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate token"})
	}
	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user":  userResponse(user),
	})
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	}
}

func normalizeEmail(raw string) (string, bool) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return strings.ToLower(parsed.Address), true
}
