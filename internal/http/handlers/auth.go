package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersAuthStore interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type TokenIssuer interface {
	GenerateToken(userID, email string, role user.Role) (string, error)
}

type AuthHandler struct {
	users UsersAuthStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UsersAuthStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

type SignupRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := security.ValidatePasswordStrength(req.Password); err != nil {
		RespondValidation(ctx, []FieldError{{
			Field:   "password",
			Message: "must contain at least one uppercase letter, one lowercase letter, and one number",
		}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// role and status are forced to their defaults inside the factory
	u := user.New(req.FullName, req.Email, hash)

	err = h.users.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "Email already exists")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Account created successfully", gin.H{
		"token": token,
		"user":  u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, user.NormalizeEmail(req.Email))
	if err != nil {
		// identical message for unknown email and wrong password, on
		// purpose: the response must not reveal which one it was
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	// only after the password checks out, so the message above stays
	// indistinguishable for unknown accounts
	if foundUser.Status == user.StatusInactive {
		RespondForbidden(ctx, "Account is deactivated")
		return
	}

	now := time.Now().UTC()

	// best effort: a failed stamp must not fail the login
	_ = h.users.UpdateLastLogin(cctx, foundUser.ID, now)
	foundUser.LastLogin = &now

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  foundUser,
	})
}

// Me resolves the identity carried by the verified token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	RespondSuccess(ctx, http.StatusOK, "", gin.H{"user": u})
}

// Logout is stateless: the token stays valid until expiry and the
// client simply discards it.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	RespondSuccess(ctx, http.StatusOK, "Logged out successfully", nil)
}
