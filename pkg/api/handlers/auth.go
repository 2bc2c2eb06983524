package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/leadcrm/config"
	apierrors "github.com/jordanlanch/leadcrm/pkg/api/errors"
	apimiddleware "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/auth"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	userStore users.Store
	config    *config.Config
	blacklist *auth.TokenBlacklist
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler. blacklist may be nil when
// logout revocation is disabled.
func NewAuthHandler(userStore users.Store, cfg *config.Config, blacklist *auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		userStore: userStore,
		config:    cfg,
		blacklist: blacklist,
		validator: validator.New(),
	}
}

// Register creates a new agent account and returns a token for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	u := &users.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         policy.RoleAgent,
	}
	if err := h.userStore.Insert(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return apierrors.ConflictError(c, "User with this email already exists")
		}
		return apierrors.DatabaseError(c, err)
	}

	return h.respondWithToken(c, u)
}

// Login authenticates by email and password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return h.invalidCredentials(c)
		}
		return apierrors.DatabaseError(c, err)
	}

	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		return h.invalidCredentials(c)
	}

	return h.respondWithToken(c, u)
}

// Logout revokes the current token until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return apierrors.UnauthorizedError(c, "no token on context")
	}

	if h.blacklist != nil {
		claims, err := auth.ValidateJWT(token, h.config.JWTSecret)
		if err != nil {
			return apierrors.UnauthorizedError(c, "token no longer valid")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		ttl := time.Duration(0)
		if claims.ExpiresAt != nil {
			ttl = time.Until(claims.ExpiresAt.Time)
		}
		if ttl > 0 {
			if err := h.blacklist.Add(ctx, token, ttl); err != nil {
				return apierrors.InternalError(c, err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.userStore.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apierrors.UnauthorizedError(c, "account no longer exists")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, userInfo(u))
}

func (h *AuthHandler) respondWithToken(c echo.Context, u *users.User) error {
	token, err := auth.GenerateJWT(u.ID, u.Email, u.Role, u.OrganizationID, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  userInfo(u),
	})
}

// invalidCredentials deliberately does not distinguish a missing account
// from a wrong password.
func (h *AuthHandler) invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "invalid_credentials",
		Message: "Email or password is incorrect",
	})
}

func userInfo(u *users.User) *models.UserInfo {
	return &models.UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
	}
}
