package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
	"github.com/ecocoleta/ecocoleta-backend/internal/middleware"
	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
	"github.com/ecocoleta/ecocoleta-backend/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // PRODUTOR | COLETOR | COOPERATIVA | ADMIN
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type tokenPairResp struct {
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup creates a user with active=false.  No tokens are issued here;
// login is a separate step.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

// Login verifies credentials, activates the user and returns a fresh
// access/refresh pair.  Activation happens before the new refresh hash
// is stored, so a failure partway through never leaves a hash on the
// row that the client was not given the token for.  Unknown email and
// wrong password answer with the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.Users.SetActive(ctx, u.ID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate user failed"})
	}
	pair, err := h.issuePair(ctx, u.ID, func(hash string) error {
		return h.Users.StoreRefreshHash(ctx, u.ID, hash)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a valid refresh token for a new pair and rotates
// the stored hash.  The rotation is a compare-and-swap: the update only
// lands while the stored hash is still the one that was just verified,
// so a superseded or racing token gets rejected instead of silently
// clobbering the newer session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	userID, err := utils.VerifyRefreshToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.RefreshTokenHash == nil || !utils.CompareRefreshRaw(*u.RefreshTokenHash, raw) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive user"})
	}

	oldHash := *u.RefreshTokenHash
	pair, err := h.issuePair(ctx, u.ID, func(hash string) error {
		return h.Users.RotateRefreshHash(ctx, u.ID, oldHash, hash)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, pair)
}

// issuePair mints an access/refresh pair for a user, hashes the refresh
// token and hands the hash to store, which persists it (either an
// unconditional overwrite at login or a compare-and-swap at refresh).
func (h *AuthHandler) issuePair(ctx context.Context, userID string, store func(hash string) error) (tokenPairResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPairResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, userID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPairResp{}, err
	}
	hash, err := utils.HashRefreshRaw(refresh.Token, h.Cfg.BcryptCost)
	if err != nil {
		return tokenPairResp{}, err
	}
	if err := store(hash); err != nil {
		return tokenPairResp{}, err
	}
	return tokenPairResp{
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
	}, nil
}

// Logout deactivates the current user and revokes the stored refresh
// hash.  Outstanding access tokens stop working immediately because
// JWTAuth gates on the active flag.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, userID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	if err := h.Users.ClearRefreshHash(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}
