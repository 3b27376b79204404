package core

import "strconv"

// Identity is the authenticated user behind a connection. It is resolved once
// when the connection is accepted and never changes afterwards.
type Identity struct {
	UserID    int64
	FirstName string
	Role      string
}

// Validate distinguishes a missing identity from one that carries no usable
// user id.
func (id Identity) Validate() error {
	if id == (Identity{}) {
		return ErrUnauthenticated
	}
	if id.UserID <= 0 {
		return ErrMalformedIdentity
	}
	return nil
}

// GroupName returns the fan-out group that holds every connection of a user.
func GroupName(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10)
}
