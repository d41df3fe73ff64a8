package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type UsersAdminStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error)
	SetStatus(ctx context.Context, id string, status user.Status) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// AdminUsersHandler serves the admin console: listing, single-record
// lookup, activation toggling and deletion. Every route behind it is
// gated on the admin role by the router.
type AdminUsersHandler struct {
	users     UsersAdminStore
	listCache *cache.Cache
}

func NewAdminUsersHandler(users UsersAdminStore, listCache *cache.Cache) *AdminUsersHandler {
	return &AdminUsersHandler{
		users:     users,
		listCache: listCache,
	}
}

func (h *AdminUsersHandler) ListUsers(ctx *gin.Context) {
	filter, errs := parseListQuery(ctx)

	if len(errs) > 0 {
		RespondValidation(ctx, errs)
		return
	}

	key := utils.BuildUsersListCacheKey(filter)

	if h.listCache != nil {
		if cached, ok := h.listCache.Get(key); ok {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, total, err := h.users.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	payload := gin.H{
		"success":    true,
		"users":      users,
		"pagination": user.NewPagination(filter.Page, filter.Limit, total),
	}

	if h.listCache != nil {
		h.listCache.Set(key, payload)
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

func (h *AdminUsersHandler) GetUser(ctx *gin.Context) {
	id, ok := targetID(ctx)
	if !ok {
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

func (h *AdminUsersHandler) Activate(ctx *gin.Context) {
	id, ok := targetID(ctx)
	if !ok {
		return
	}

	h.setStatus(ctx, id, user.StatusActive, "activated")
}

func (h *AdminUsersHandler) Deactivate(ctx *gin.Context) {
	id, ok := targetID(ctx)
	if !ok {
		return
	}

	// admins must not lock themselves out
	if !h.allowSelfMutation(ctx, id, "deactivate") {
		return
	}

	h.setStatus(ctx, id, user.StatusInactive, "deactivated")
}

func (h *AdminUsersHandler) Delete(ctx *gin.Context) {
	id, ok := targetID(ctx)
	if !ok {
		return
	}

	if !h.allowSelfMutation(ctx, id, "delete") {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// fetched first so the confirmation can name the account
	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	if err := h.users.Delete(cctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	h.invalidateListCache()

	RespondSuccess(ctx, http.StatusOK, fmt.Sprintf("User %s deleted successfully", u.FullName), nil)
}

func (h *AdminUsersHandler) setStatus(ctx *gin.Context, id string, status user.Status, verb string) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.SetStatus(cctx, id, status)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	h.invalidateListCache()

	RespondSuccess(ctx, http.StatusOK, fmt.Sprintf("User %s %s successfully", u.FullName, verb), gin.H{"user": u})
}

// allowSelfMutation is the one self-protection check shared by every
// admin mutation that could strand the acting admin. It runs on a
// validated id, before any write.
func (h *AdminUsersHandler) allowSelfMutation(ctx *gin.Context, id, action string) bool {
	actorID, _ := middlewares.UserIDFromContext(ctx)

	if actorID != "" && actorID == id {
		RespondBadRequest(ctx, fmt.Sprintf("You cannot %s your own account", action))
		return false
	}

	return true
}

// targetID validates the :id path param; a malformed id behaves like a
// missing record.
func targetID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "User not found")
		return "", false
	}

	return id, true
}

func (h *AdminUsersHandler) invalidateListCache() {
	if h.listCache != nil {
		h.listCache.Clear()
	}
}

func parseListQuery(ctx *gin.Context) (user.ListFilter, []FieldError) {
	var errs []FieldError

	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePositiveInt(ctx.Query("limit"), defaultPageSize)

	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := user.ListFilter{
		Search: ctx.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	if raw := ctx.Query("role"); raw != "" {
		role := user.Role(raw)

		if !role.Valid() {
			errs = append(errs, FieldError{Field: "role", Message: "must be one of user, admin"})
		} else {
			filter.Role = role
		}
	}

	if raw := ctx.Query("status"); raw != "" {
		status := user.Status(raw)

		if !status.Valid() {
			errs = append(errs, FieldError{Field: "status", Message: "must be one of active, inactive"})
		} else {
			filter.Status = status
		}
	}

	return filter, errs
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}
