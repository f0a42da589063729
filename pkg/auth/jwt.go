package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/slulibrary/nerdemo/config"
)

const JwtAlg = "HS256"

var ErrSecretNotSet = fmt.Errorf(
	"auth secret not set. Ensure %s_AUTH_SECRET is set in your environment",
	config.EnvPrefix,
)

// GenerateJWT signs a token accepted by JWTVerifier.
// Requires that NERDEMO_AUTH_SECRET is set in the environment.
func GenerateJWT(cfg *config.Config) (string, error) {
	secret := []byte(cfg.Auth.Secret)
	if len(secret) == 0 {
		return "", ErrSecretNotSet
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "nerdemo",
	})
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("error generating auth token: %w", err)
	}

	return tokenString, nil
}

// JWTVerifier extracts and verifies bearer tokens, leaving the result in the
// request context for jwtauth.FromContext.
func JWTVerifier(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	secret := []byte(cfg.Auth.Secret)
	if len(secret) == 0 {
		return nil, ErrSecretNotSet
	}
	tokenAuth := jwtauth.New(JwtAlg, secret, nil)
	return jwtauth.Verifier(tokenAuth), nil
}

// Authenticated reports whether the request carried a valid token.
func Authenticated(r *http.Request) error {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return err
	}
	if token == nil {
		return errors.New("no token found")
	}
	return nil
}
