package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

func authProtected(users *fakeUserRepo, groups *fakeGroupRepo, got *domain.AuthPrincipal) http.Handler {
	auth := AuthMiddleware(users, groups)
	return auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		*got = p
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddleware(t *testing.T) {
	users := &fakeUserRepo{user: &domain.User{
		ID: "u1", UserName: "alice", KeyHash: hashOf(testKey), Active: true, IsSuper: true,
	}}
	groups := &fakeGroupRepo{memberships: map[string][]string{"u1": {"g-ops", "g-dev"}}}

	t.Run("valid key resolves the principal", func(t *testing.T) {
		var got domain.AuthPrincipal
		handler := authProtected(users, groups, &got)

		req := httptest.NewRequest(http.MethodGet, "/zones", nil)
		req.Header.Set("Authorization", "Bearer "+testKey)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.UserID != "u1" || !got.IsSuper || len(got.GroupIDs) != 2 {
			t.Errorf("unexpected principal: %+v", got)
		}
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		var got domain.AuthPrincipal
		handler := authProtected(users, groups, &got)

		req := httptest.NewRequest(http.MethodGet, "/zones", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		var got domain.AuthPrincipal
		handler := authProtected(users, groups, &got)

		req := httptest.NewRequest(http.MethodGet, "/zones", nil)
		req.Header.Set("Authorization", "Bearer zc_wrongkey")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		inactive := &fakeUserRepo{user: &domain.User{
			ID: "u2", UserName: "bob", KeyHash: hashOf(testKey), Active: false,
		}}
		var got domain.AuthPrincipal
		handler := authProtected(inactive, groups, &got)

		req := httptest.NewRequest(http.MethodGet, "/zones", nil)
		req.Header.Set("Authorization", "Bearer "+testKey)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
