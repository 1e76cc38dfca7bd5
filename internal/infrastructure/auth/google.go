package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/velux/backend/internal/infrastructure/config"
	"google.golang.org/api/idtoken"
)

// Google sign-in errors
var (
	ErrGoogleNotConfigured   = errors.New("google sign-in is not configured")
	ErrInvalidGoogleToken    = errors.New("invalid google id token")
	ErrGoogleEmailUnverified = errors.New("google account email is not verified")
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleIdentity is the verified subset of a Google id_token
type GoogleIdentity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

type payloadValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google id_tokens against the configured client ids
type GoogleVerifier struct {
	clientIDs []string
	validate  payloadValidator
}

// NewGoogleVerifier creates a verifier backed by Google's published signing keys
func NewGoogleVerifier(cfg config.GoogleConfig) *GoogleVerifier {
	return &GoogleVerifier{
		clientIDs: cfg.ClientIDs,
		validate:  idtoken.Validate,
	}
}

// Verify checks the token signature, expiry, audience and issuer, and
// requires a verified email address.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if len(v.clientIDs) == 0 {
		return nil, ErrGoogleNotConfigured
	}

	// an empty audience skips the library's single-audience check; the
	// accepted set is checked below
	payload, err := v.validate(ctx, token, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if !slices.Contains(v.clientIDs, payload.Audience) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidGoogleToken)
	}
	if !slices.Contains(googleIssuers, payload.Issuer) {
		return nil, fmt.Errorf("%w: wrong issuer", ErrInvalidGoogleToken)
	}
	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidGoogleToken)
	}

	identity := &GoogleIdentity{
		Subject:    payload.Subject,
		Email:      stringClaim(payload, "email"),
		GivenName:  stringClaim(payload, "given_name"),
		FamilyName: stringClaim(payload, "family_name"),
		Picture:    stringClaim(payload, "picture"),
	}
	if identity.Email == "" || !emailVerified(payload) {
		return nil, ErrGoogleEmailUnverified
	}
	return identity, nil
}

func stringClaim(p *idtoken.Payload, name string) string {
	s, _ := p.Claims[name].(string)
	return s
}

// emailVerified accepts both the boolean and the string form of the claim
func emailVerified(p *idtoken.Payload) bool {
	switch v := p.Claims["email_verified"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
