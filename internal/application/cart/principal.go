package cart

import "github.com/google/uuid"

// Principal is the authentication state of the caller, passed explicitly
// into every cart operation. The zero value is an anonymous caller.
type Principal struct {
	UserID uuid.UUID
}

// Anonymous returns the principal of an unauthenticated caller
func Anonymous() Principal {
	return Principal{}
}

// Authenticated returns the principal of a signed-in user
func Authenticated(userID uuid.UUID) Principal {
	return Principal{UserID: userID}
}

// IsAuthenticated reports whether the caller is a signed-in user
func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}
