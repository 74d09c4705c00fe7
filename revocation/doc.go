// Package revocation implements the Redis-backed token revocation store.
//
// Four independent scopes are tracked under TTL'd keys:
//
//	revoked:token:{jti}      single token (logout, rotation)
//	revoked:family:{fid}     refresh rotation family (reuse/theft signal)
//	revoked:user:{sub}       logout-everywhere, password change
//	revoked:tenant:{tid}     tenant suspension
//
// A configured key prefix, if any, is prepended as "{prefix}:"; an empty
// prefix yields the bare forms above.
//
// Token and family records condemn unconditionally. User and tenant records
// carry the revocation timestamp and only condemn tokens issued at or before
// it, so a user who logs back in after "logout everywhere" is not locked out
// for the record's remaining TTL.
//
// Every write's TTL must be at least the maximum remaining lifetime of any
// token the record could affect, otherwise a still-valid token could outlive
// its own revocation. Callers own that arithmetic; the store only refuses
// non-positive TTLs.
//
// # Architecture boundaries
//
// The store answers "is this revoked" and records revocations. It does not
// parse tokens, decide policy, or retry: a failed round-trip surfaces as
// [ErrStoreUnavailable] and the gate applies its configured fail-open or
// fail-closed policy exactly once.
package revocation
