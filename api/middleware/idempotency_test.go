package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeIdempotencyStore struct {
	keys map[string]bool
}

func (s *fakeIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "mercato:idempotency:" + scope + ":" + id
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := Idempotency(store, middlewareTestLogger(), "orders", time.Hour)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set(IdempotencyKeyHeader, "order-attempt-1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := Idempotency(store, middlewareTestLogger(), "orders", time.Hour)(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	handler := Idempotency(&fakeIdempotencyStore{}, middlewareTestLogger(), "orders", time.Hour)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set(IdempotencyKeyHeader, strings.Repeat("k", 200))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
