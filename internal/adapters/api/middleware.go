package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/poyrazK/zonecontrol/internal/core/ports"
)

type contextKey string

const CtxPrincipal contextKey = "principal"

// AuthMiddleware resolves the Bearer access key into an authenticated
// principal: the key hash names a user, the user's group memberships and
// super flag form the principal.
func AuthMiddleware(users ports.UserRepository, groups ports.GroupRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized: missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			key := strings.TrimPrefix(authHeader, "Bearer ")
			hash := sha256.Sum256([]byte(key))
			keyHash := hex.EncodeToString(hash[:])

			user, err := users.GetUserByKeyHash(r.Context(), keyHash)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil || !user.Active {
				http.Error(w, "Unauthorized: invalid or inactive access key", http.StatusUnauthorized)
				return
			}

			groupIDs, err := groups.GetGroupIDsForUser(r.Context(), user.ID)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			principal := domain.AuthPrincipal{
				UserID:   user.ID,
				GroupIDs: groupIDs,
				IsSuper:  user.IsSuper,
			}
			ctx := context.WithValue(r.Context(), CtxPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFrom(ctx context.Context) (domain.AuthPrincipal, bool) {
	p, ok := ctx.Value(CtxPrincipal).(domain.AuthPrincipal)
	return p, ok
}
