package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
	authuc "example.com/cleantec-orders/app/internal/usecase/auth"
)

const issuer = "cleantec-orders"

// JWTService issues and verifies the HS256 bearer tokens that back-office
// admins send to the /admin routes. Tokens carry the admin's id and role
// and are only accepted from this issuer.
type JWTService struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTService(secret string, expiration time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

type jwtClaims struct {
	AdminID int64  `json:"aid"`
	Role    string `json:"role"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for a logged-in admin, valid for the
// configured expiration.
func (s *JWTService) GenerateToken(a *domadmin.Admin) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		AdminID: a.ID,
		Role:    string(a.Role),
		Email:   a.Email,
		Name:    a.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies signature, issuer and expiry, and rejects tokens
// carrying a malformed role. Role authorization is left to the routes.
func (s *JWTService) ParseToken(token string) (*authuc.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	role, err := domadmin.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	return &authuc.Claims{
		AdminID: claims.AdminID,
		Role:    role,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
