package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var req handlers.SignupRequest
		if !handlers.BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestBindJSONFieldErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMessage string
	}{
		{
			name:        "missing required field",
			body:        `{"email":"ada@example.com","password":"Sup3rSecret"}`,
			wantField:   "fullName",
			wantMessage: "is required",
		},
		{
			name:        "invalid email",
			body:        `{"fullName":"Ada Lovelace","email":"nope","password":"Sup3rSecret"}`,
			wantField:   "email",
			wantMessage: "must be a valid email address",
		},
		{
			name:        "too short",
			body:        `{"fullName":"A","email":"ada@example.com","password":"Sup3rSecret"}`,
			wantField:   "fullName",
			wantMessage: "must be at least 2",
		},
		{
			name:        "wrong type",
			body:        `{"fullName":123,"email":"ada@example.com","password":"Sup3rSecret"}`,
			wantField:   "fullName",
			wantMessage: "must be of type string",
		},
		{
			name:        "malformed json",
			body:        `{"fullName":`,
			wantField:   "body",
			wantMessage: "malformed JSON",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := bindRouter()

			w := doJSON(t, r, http.MethodPost, "/bind", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}

			body := decodeBody(t, w)

			if body["message"] != "Validation failed" {
				t.Fatalf("message = %v, want Validation failed", body["message"])
			}

			errs, _ := body["errors"].([]any)
			if len(errs) == 0 {
				t.Fatal("expected field errors")
			}

			found := false
			for _, raw := range errs {
				fe, _ := raw.(map[string]any)
				if fe["field"] == tt.wantField {
					found = true
					if msg, _ := fe["message"].(string); !strings.Contains(msg, tt.wantMessage) {
						t.Fatalf("field %q message = %q, want it to contain %q", tt.wantField, msg, tt.wantMessage)
					}
				}
			}

			if !found {
				t.Fatalf("no error for field %q in %s", tt.wantField, w.Body.String())
			}
		})
	}
}
