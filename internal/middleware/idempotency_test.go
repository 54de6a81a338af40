package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-hris-workflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIdempotency(t *testing.T) {
	const (
		path = "/api/v1/leaves/abc/submit"
		user = "user-1"
		key  = "k-1"
	)
	cacheKey := middleware.IdempotencyKey(path, user, key)
	lockKey := cacheKey + ":lock"

	newRouter := func(idem gin.HandlerFunc, calls *int) *gin.Engine {
		r := gin.New()
		r.POST("/api/v1/leaves/:id/submit", func(c *gin.Context) {
			c.Set(middleware.ContextUserID, user)
		}, idem, func(c *gin.Context) {
			*calls++
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return r
	}

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", key)
		return req
	}

	t.Run("first call stores the response", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		calls := 0
		r := newRouter(middleware.Idempotency(db, zap.NewNop()), &calls)

		payload := []byte(`{"status":200,"body":{"ok":true}}`)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completed call is replayed", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		calls := 0
		r := newRouter(middleware.Idempotency(db, zap.NewNop()), &calls)

		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":{"id":"x"}}`)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"id":"x"}`, w.Body.String())
		assert.Equal(t, 0, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in flight call conflicts", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		calls := 0
		r := newRouter(middleware.Idempotency(db, zap.NewNop()), &calls)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without key or redis the handler just runs", func(t *testing.T) {
		calls := 0
		r := newRouter(middleware.Idempotency(nil, zap.NewNop()), &calls)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
	})
}
