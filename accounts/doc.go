// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package accounts owns user credentials and sessions.

A Service registers users, sends and consumes email verification tokens,
logs users in, and resolves bearer tokens back to an Identity. Admin
operations (listing, creating, deleting users, toggling verification and
resetting passwords) live alongside it in admin.go.

# Tokens

Login issues an HS256 JWT whose subject is the user id and whose jti names
a server-side session. A token authenticates only while that session
exists, so logging out, changing a password, resetting a password or
deleting the user revokes it before its exp claim.

# Errors

Every method returns *apperr.Error values. Unknown emails and wrong
passwords produce the same 401. An unverified account is only reported as
such (code email_not_verified) after its password has matched.
*/
package accounts
