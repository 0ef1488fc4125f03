package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// KeySetSource yields the signing keys for an issuer. *jwk.Cache satisfies it.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// JWKSVerifier checks Cognito access tokens against the pool's JWKS.
type JWKSVerifier struct {
	keys     KeySetSource
	jwksURL  string
	issuer   string
	clientID string
}

func NewJWKSVerifier(keys KeySetSource, issuer, clientID string) *JWKSVerifier {
	return &JWKSVerifier{
		keys:     keys,
		jwksURL:  JWKSURL(issuer),
		issuer:   issuer,
		clientID: clientID,
	}
}

// JWKSURL is where a Cognito user pool publishes its signing keys.
func JWKSURL(issuer string) string {
	return issuer + "/.well-known/jwks.json"
}

func (v *JWKSVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	set, err := v.keys.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, errors.New("no user ID in JWT subject claim")
	}

	// Cognito access tokens carry client_id instead of aud
	var tokenUse string
	if err := token.Get("token_use", &tokenUse); err != nil || tokenUse != "access" {
		return nil, errors.New("token is not an access token")
	}

	if v.clientID != "" {
		var clientID string
		if err := token.Get("client_id", &clientID); err != nil || clientID != v.clientID {
			return nil, errors.New("token was issued to a different client")
		}
	}

	return &Identity{UserID: userID}, nil
}
