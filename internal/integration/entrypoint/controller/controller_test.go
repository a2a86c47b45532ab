package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/streamshare/backend/internal/domain/error"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusForMutualError(t *testing.T) {
	tests := []struct {
		code domainerror.MutualErrorCode
		want int
	}{
		{domainerror.ErrCodeInviteNotFoundOrUnauthorized, http.StatusNotFound},
		{domainerror.ErrCodeMutualGroupNotFound, http.StatusNotFound},
		{domainerror.ErrCodeNotEnoughMembers, http.StatusBadRequest},
		{domainerror.ErrCodeUnknownPlan, http.StatusBadRequest},
		{domainerror.ErrCodeInvalidThreshold, http.StatusBadRequest},
		{domainerror.ErrCodeInviteAlreadyResponded, http.StatusConflict},
		{domainerror.ErrCodeAlreadyActiveMember, http.StatusConflict},
		{domainerror.ErrCodeGroupNotForming, http.StatusConflict},
		{domainerror.ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{domainerror.MutualErrorCode("MUT-999999"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForMutualError(tt.code))
		})
	}
}

func TestHandleMutualError(t *testing.T) {
	t.Run("wrapped mutual error keeps its code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(rec)

		err := fmt.Errorf("respond: %w", domainerror.NewMutualError(
			domainerror.ErrCodeInviteAlreadyResponded,
			"you already accepted this invite",
			domainerror.ErrInviteAlreadyResponded,
		))
		handleMutualError(ctx, err)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "MUT-030001", body["code"])
		assert.Equal(t, "you already accepted this invite", body["error"])
	})

	t.Run("unknown error hides details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(rec)

		handleMutualError(ctx, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestHealthController(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		database   HealthCheck
		cache      HealthCheck
		wantCode   int
		wantStatus string
		wantCache  string
	}{
		{"all healthy", ok, ok, http.StatusOK, "ok", "connected"},
		{"cache disabled", ok, nil, http.StatusOK, "ok", "disabled"},
		{"cache down", ok, down, http.StatusOK, "degraded", "disconnected"},
		{"database down", down, ok, http.StatusServiceUnavailable, "unavailable", "connected"},
		{"no database check", nil, nil, http.StatusServiceUnavailable, "unavailable", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", NewHealthController(tt.database, tt.cache).Check)

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantCache, body.Cache)
			assert.NotEmpty(t, body.Timestamp)
		})
	}
}
