// Package auth issues and validates the bearer credentials used by the
// order tracker, and hashes user passwords.
//
// Tokens are HS256 JWTs carrying sub (user id), role, iss, aud, iat and
// exp. Validation requires every one of those claims: a token missing any
// of them is rejected regardless of signature.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/ordertrack/config"
)

// Claims holds the typed JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ErrMissingClaim is returned when a structurally valid token lacks one of
// the required claims.
var ErrMissingClaim = errors.New("auth: token is missing a required claim")

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken creates a signed access token for the given user.
// The lifetime comes from ACCESS_TOKEN_EXP_MINUTES (default 60).
func GenerateToken(userID uint, role string) (string, error) {
	now := time.Now()
	exp := time.Duration(config.AccessTokenExpMinutes()) * time.Minute

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    config.JWTIssuer(),
			Audience:  jwt.ClaimStrings{config.JWTAudience()},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a JWT string. Signature, expiry,
// issuer and audience are checked by the parser; sub and role are checked
// here since the library treats them as optional.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{},
		func(tok *jwt.Token) (interface{}, error) { return secret(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.JWTIssuer()),
		jwt.WithAudience(config.JWTAudience()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrMissingClaim
	}

	return claims, nil
}

// SubjectID converts the token subject back into a user id.
func (c *Claims) SubjectID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrMissingClaim
	}
	return uint(id), nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
