package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role represents a dashboard user role. Read endpoints are open; object
// mutations require the expert role.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleExpert Role = "expert"
)

var errInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued by the dashboard's identity provider.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// parseToken validates an HS256 bearer token and returns its claims.
func parseToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// requireExpert guards mutation handlers. With no secret configured the
// endpoints stay locked rather than open.
func (s *Server) requireExpert(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			writeError(w, http.StatusUnauthorized, "mutations disabled: no signing secret configured")
			return
		}
		token := extractBearer(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := parseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if Role(claims.Role) != RoleExpert {
			writeError(w, http.StatusForbidden, "expert role required")
			return
		}
		next(w, r)
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
