package helper

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 7 * 24 * time.Hour

// UserClaims is what a signed token carries. The middleware trusts the
// token payload and does not re-query the user row per request.
type UserClaims struct {
	UserID       int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	DistrictName string `json:"district_name,omitempty"`
	jwt.RegisteredClaims
}

// SignUserToken issues an HS256 token for the given identity.
func SignUserToken(secret string, id int64, username, role, districtName string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:       id,
		Username:     username,
		Role:         role,
		DistrictName: districtName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// ParseUserToken verifies the signature and expiry and returns the claims.
func ParseUserToken(secret, tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
