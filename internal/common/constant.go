// Package common contains shared constants, sentinel errors and small helpers
// used across shopkeeper components.
package common

import "time"

// SessionCookieName is the default name of the cookie carrying the session token.
const SessionCookieName = "token"

// SessionTTL is the default lifetime of a session cookie and token (365 days).
const SessionTTL = 365 * 24 * time.Hour

// ResetTokenTTL is how long a password reset token stays valid after issuance.
const ResetTokenTTL = time.Hour

// ResetTokenBytes is the number of random bytes in a reset token before hex encoding.
const ResetTokenBytes = 20
