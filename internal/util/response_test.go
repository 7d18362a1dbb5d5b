package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/metrics"
	"github.com/SergeySenin/user-service/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	logger.SugaredLog = logger.Log.Sugar()
	m.Run()
}

func TestRespondWithAPIError_CountsErrorByEndpoint(t *testing.T) {
	counter := metrics.Get().ErrorsTotal.WithLabelValues("USER_NOT_FOUND", "/api/v1/users/:userId")
	before := testutil.ToFloat64(counter)

	r := gin.New()
	r.GET("/api/v1/users/:userId", func(c *gin.Context) {
		RespondWithAPIError(c, apperrors.UserNotFound(7))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/7", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRespondWithError_MapsStorageError(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		RespondWithError(c, &storage.StorageError{Op: "put", Key: "avatars/1/x/original.png", Err: errors.New("connection refused")})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_STORAGE_ERROR")
	assert.NotContains(t, w.Body.String(), "avatars/1/x/original.png")
}
