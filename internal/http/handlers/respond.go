package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError is the per-field detail attached to validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondSuccess writes the {success:true, message?, ...payload}
// envelope every endpoint shares.
func RespondSuccess(ctx *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}

	if message != "" {
		body["message"] = message
	}

	for k, v := range payload {
		body[k] = v
	}

	ctx.JSON(status, body)
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondValidation(ctx *gin.Context, errs []FieldError) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

// Duplicate-email conflicts surface as 400, mirroring the store-level
// duplicate-key translation the API contract promises.
func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}
