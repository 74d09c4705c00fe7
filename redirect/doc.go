// Package redirect sanitizes "return to" targets for login redirects.
//
// Only same-origin targets survive: the sanitizer resolves the candidate against
// the configured base origin and strips scheme, host, and fragment, so a login
// redirect can never carry a user to an attacker-controlled absolute URL.
package redirect
