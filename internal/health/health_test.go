package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNATS bool

func (f fakeNATS) IsConnected() bool { return bool(f) }

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func TestCheckAllDisabled(t *testing.T) {
	status := NewChecker(nil, nil, nil, func() int { return 3 }).Check(context.Background())

	assert.Equal(t, StatusDisabled, status.NATS)
	assert.Equal(t, StatusDisabled, status.Redis)
	assert.Equal(t, StatusDisabled, status.Database)
	assert.Equal(t, 3, status.Sessions)
	assert.True(t, status.Healthy())
}

func TestCheckDependencies(t *testing.T) {
	status := NewChecker(fakeNATS(true), fakeRedis{}, fakeDB{err: errors.New("refused")}, nil).
		Check(context.Background())

	assert.Equal(t, StatusConnected, status.NATS)
	assert.Equal(t, StatusConnected, status.Redis)
	assert.Equal(t, StatusDisconnected, status.Database)
	assert.False(t, status.Healthy())
}

func TestReadyEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		checker *Checker
		code    int
	}{
		{"healthy", NewChecker(fakeNATS(true), nil, nil, nil), http.StatusOK},
		{"nats down", NewChecker(fakeNATS(false), nil, nil, nil), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/ready", tc.checker.Ready)
			r.GET("/health", tc.checker.Live)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tc.code, w.Code)

			var status Status
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, StatusDisabled, status.Redis)

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
