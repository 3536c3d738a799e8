// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, token generation, and bearer token
signing.

# Passwords

Passwords are hashed with bcrypt at a configurable cost:

	hash, err := auth.HashPassword(password, cfg.BcryptCost)
	ok := auth.CheckPassword(hash, attempt)

bcrypt only reads the first 72 bytes, so longer passwords are refused with
ErrPasswordTooLong instead of being silently truncated.

# Verification Tokens

Email verification tokens are random 32-byte secrets, hex encoded:

	token, hash, err := auth.GenerateVerificationToken()

The raw token goes into the emailed link. Only its SHA-256 (HashToken) is
stored, so a leaked users table can't be used to verify accounts.

# Bearer Tokens

TokenIssuer signs HS256 JWTs. The subject is the user id and the jti is
the server-side session id:

	ti := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	token, expiresAt, err := ti.Issue(userID, sessionID)
	claims, err := ti.Parse(token)

Parse checks the signature, algorithm, and expiry. A valid signature alone
does not make a token usable: the session it names must still exist (see
the session package).

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
