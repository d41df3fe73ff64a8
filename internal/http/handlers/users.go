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

type UsersProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, patch user.ProfilePatch) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// UsersHandler serves the self-service profile endpoints.
type UsersHandler struct {
	users UsersProfileStore
}

func NewUsersHandler(users UsersProfileStore) *UsersHandler {
	return &UsersHandler{users: users}
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h *UsersHandler) GetProfile(ctx *gin.Context) {
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

		RespondInternal(ctx, "Could not load profile")
		return
	}

	RespondSuccess(ctx, http.StatusOK, "", gin.H{"user": u})
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch := user.ProfilePatch{
		FullName: req.FullName,
		Email:    req.Email,
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, id, patch)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "Email is already in use by another account")
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Profile updated successfully", gin.H{"user": u})
}

func (h *UsersHandler) ChangePassword(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := security.ValidatePasswordStrength(req.NewPassword); err != nil {
		RespondValidation(ctx, []FieldError{{
			Field:   "newPassword",
			Message: "must contain at least one uppercase letter, one lowercase letter, and one number",
		}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		RespondUnauthorized(ctx, "Current password is incorrect")
		return
	}

	// same-password reuse is rejected before any write happens
	if err := security.CheckPassword(u.PasswordHash, req.NewPassword); err == nil {
		RespondBadRequest(ctx, "New password must be different from current password")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := h.users.UpdatePassword(cctx, id, hash); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Password changed successfully", nil)
}
