package models

// Identity is the caller of an operation as resolved from the session
// token. The zero value is the anonymous caller.
type Identity struct {
	UserID string
}

// Anonymous is the identity of a caller without a valid session.
var Anonymous = Identity{}

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}
