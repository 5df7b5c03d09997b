package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JWT Secret Key, set from JWT_SECRET at startup
var JwtKey = []byte("your_secret_key")

var ErrInvalidToken = errors.New("invalid token")

// Token purposes. A token is only accepted where its purpose is expected.
const (
	PurposeAuth   = "auth"
	PurposeVerify = "verify"
)

// Claims represents the JWT claims
type Claims struct {
	UID     string   `json:"uid"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Purpose string   `json:"purpose"`
	jwt.StandardClaims
}

// HasRole reports whether the token carries role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GenerateJWT generates a login token for a user, valid for ttl
func GenerateJWT(uid, email string, roles []string, ttl time.Duration) (string, error) {
	return sign(&Claims{UID: uid, Email: email, Roles: roles, Purpose: PurposeAuth}, ttl)
}

// GenerateVerificationToken generates the token mailed out to confirm email
func GenerateVerificationToken(email string, ttl time.Duration) (string, error) {
	return sign(&Claims{Email: email, Purpose: PurposeVerify}, ttl)
}

func sign(claims *Claims, ttl time.Duration) (string, error) {
	claims.StandardClaims = jwt.StandardClaims{
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseJWT validates tokenStr and returns its claims. A token issued for
// another purpose is rejected.
func ParseJWT(tokenStr, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return JwtKey, nil
	})
	if err != nil || !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
