package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

type ctxKey struct{}

var (
	ctxAdminKey        = ctxKey{}
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

// authAdmin is the back-office admin a request was authenticated as.
type authAdmin struct {
	AdminID int64
	Role    domadmin.Role
	Email   string
	Name    string
}

// authMiddleware requires a valid admin bearer token and stores the admin
// in the request context.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := a.tokenSvc.ParseToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), ctxAdminKey, &authAdmin{
			AdminID: claims.AdminID,
			Role:    claims.Role,
			Email:   claims.Email,
			Name:    claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles lets through admins holding one of roles; any other
// authenticated admin gets 403.
func (a *API) requireRoles(roles ...domadmin.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := getAuthAdmin(r.Context())
			if admin == nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			for _, role := range roles {
				if admin.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, errForbidden)
		})
	}
}

func getAuthAdmin(ctx context.Context) *authAdmin {
	if admin, ok := ctx.Value(ctxAdminKey).(*authAdmin); ok {
		return admin
	}
	return nil
}
