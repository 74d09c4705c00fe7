// Package csrf implements double-submit cookie validation for state-changing requests.
//
// A random secret is stored in a JS-readable cookie and must be echoed back in a
// request header on every POST/PUT/PATCH/DELETE. An attacker who cannot read
// cookies cross-origin cannot forge the matching header. Comparison is
// constant-time so partial matches leak nothing through timing.
//
// # What this package must NOT do
//
//   - Set cookies itself (issuance is surfaced as a value; the gate owns cookie writes).
//   - Consult session or token state; it is a pure function of the request.
package csrf
