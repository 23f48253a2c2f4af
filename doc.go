// Package authcore implements the credential and token lifecycle for the
// lessonpath backend: password validation, signed JWT access tokens,
// rotating opaque refresh tokens backed by Redis, access-token
// blacklisting on logout, and purpose-scoped single-use verification
// codes for account activation and password reset.
//
// The package is the public surface. Callers construct an [Engine]
// through [Builder], supplying a Redis client, a [UserProvider] backed by
// their user database, and optionally a [MailSender] for out-of-band code
// delivery. Engine methods are safe for concurrent use after Build.
//
// # Architecture boundaries
//
// HTTP routing, request validation, and persistence mapping live outside
// this package. The engine's only contracts with the outside world are
// the [UserProvider] and [MailSender] interfaces and the Redis client it
// is built with. Subpackages jwt and password hold the signing and
// hashing primitives; revocation holds the Redis-backed token store.
//
// # Correctness properties
//
// Refresh tokens are single-use: rotation consumes the presented token
// atomically, so two concurrent refresh calls presenting the same token
// can never both succeed. Blacklisted access tokens are rejected by
// [Engine.Validate] for exactly their remaining natural lifetime.
// Verification codes are consumed at most once and only for the purpose
// they were issued for.
package authcore
