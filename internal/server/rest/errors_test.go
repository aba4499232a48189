package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/common"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", common.ErrInvalidInput, http.StatusBadRequest},
		{"wrapped invalid input", fmt.Errorf("%w: bad role", common.ErrInvalidInput), http.StatusBadRequest},
		{"unauthorized", common.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown refresh token is 401 not 404", common.ErrTokenInvalid, http.StatusUnauthorized},
		{"revoked refresh token", common.ErrTokenRevoked, http.StatusUnauthorized},
		{"expired refresh token", common.ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", common.ErrForbidden, http.StatusForbidden},
		{"not found", common.ErrNotFound, http.StatusNotFound},
		{"conflict", common.ErrConflict, http.StatusConflict},
		{"internal", common.ErrInternal, http.StatusInternalServerError},
		{"unknown error", errors.New("surprise"), http.StatusInternalServerError},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tt.err)
			if w.Code != tt.want {
				t.Fatalf("want %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestWriteError_DoesNotLeakInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, errors.New("pq: secret table missing"))
	if body := w.Body.String(); body != `{"error":"internal error"}` {
		t.Fatalf("internal detail leaked: %s", body)
	}
}
