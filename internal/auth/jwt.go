package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rdservicos/portal/internal/models"
)

type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for p using the credential file's
// cookie key, valid for cookie.expiry_days.
func GenerateToken(cookie CookieConfig, p models.Principal) (string, error) {
	expiry := time.Duration(cookie.ExpiryDays) * 24 * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	claims := Claims{
		Username: p.Username,
		Name:     p.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cookie.Key))
}

func ValidateToken(key, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(key), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// Principal converts validated claims back into the principal they
// were issued for.
func (c *Claims) Principal() models.Principal {
	return models.Principal{Username: c.Username, DisplayName: c.Name}
}
