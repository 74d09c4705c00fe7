package authgate

import (
	"context"
	"net/http"
	"time"

	"github.com/croplane/authgate/internal"
	"github.com/croplane/authgate/jwt"
	"github.com/croplane/authgate/revocation"
)

// TokenPair is an issued access/refresh token set.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessJTI    string
	RefreshJTI   string
	FamilyID     string
}

// EstablishSession mints a fresh token pair for an authenticated principal
// and returns the cookies that carry it. Called by the identity service's
// login handler after credential verification, which is outside this
// package's scope.
func (g *Gate) EstablishSession(ctx context.Context, subject, tenantID string, roles []string) (*TokenPair, []*http.Cookie, error) {
	if g == nil || !g.ready {
		return nil, nil, ErrGateNotReady
	}

	access, accessJTI, err := g.jwt.MintAccess(subject, tenantID, roles)
	if err != nil {
		return nil, nil, err
	}
	refresh, refreshJTI, familyID, err := g.jwt.MintRefresh(subject, tenantID, roles, "")
	if err != nil {
		return nil, nil, err
	}

	pair := &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessJTI:    accessJTI,
		RefreshJTI:   refreshJTI,
		FamilyID:     familyID,
	}

	cookies := []*http.Cookie{
		g.accessCookie(access),
		g.refreshCookie(refresh),
		g.lastActivityCookie(time.Now()),
	}
	if csrfValue, err := internal.NewCSRFSecret(); err == nil {
		cookies = append(cookies, g.csrfCookie(csrfValue))
		g.metricInc(MetricCsrfIssued)
	}

	return pair, cookies, nil
}

// Refresh rotates a refresh token: the presented JTI is atomically consumed,
// a new pair is minted in the same family, and reuse of an already-consumed
// JTI condemns the entire family.
//
// Unlike access-token checks, rotation always fails closed on store outage:
// single-use semantics cannot be enforced without the store, so accepting a
// rotation while blind would hand an attacker unlimited replays.
func (g *Gate) Refresh(ctx context.Context, refreshToken string) (*TokenPair, []*http.Cookie, error) {
	if g == nil || !g.ready {
		return nil, nil, ErrGateNotReady
	}

	claims, err := g.jwt.Parse(refreshToken, jwt.UseRefresh)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		kind, _ := mapTokenError(err)
		return nil, nil, kind
	}

	// Family/user/tenant revocations are checked before consumption so a
	// logged-out or suspended session reads as revoked, not as reuse. The
	// token's own JTI is deliberately excluded here: its consumption record
	// is what distinguishes rotation replay from ordinary revocation.
	check := revocation.Check{
		FamilyID: claims.FamilyID,
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
	}
	if claims.IssuedAt != nil {
		check.IssuedAt = claims.IssuedAt.Time
	}
	rec, err := g.store.IsRevoked(ctx, check)
	if err != nil {
		g.metricInc(MetricStoreUnavailable)
		g.metricInc(MetricRefreshFailure)
		return nil, nil, ErrRevocationStoreUnavailable
	}
	if rec != nil {
		g.metricInc(MetricRefreshFailure)
		return nil, nil, ErrTokenRevoked
	}

	consumed, err := g.store.ConsumeRefresh(ctx, claims.JTI(), g.revocationTTL(claims), "rotated")
	if err != nil {
		g.metricInc(MetricStoreUnavailable)
		g.metricInc(MetricRefreshFailure)
		return nil, nil, ErrRevocationStoreUnavailable
	}
	if !consumed {
		// Reuse of a consumed refresh token is a theft signal: condemn the
		// whole family so the holder of the stolen chain is cut off too.
		g.metricInc(MetricRefreshReuseDetected)
		g.metricInc(MetricRefreshFailure)
		g.revokeFamily(ctx, claims, "refresh reuse detected")
		g.auditEmit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditRefreshReuse,
			Subject:   claims.Subject,
			TenantID:  claims.TenantID,
			JTI:       claims.JTI(),
			FamilyID:  claims.FamilyID,
			Error:     ErrRefreshReuse.Error(),
		})
		return nil, nil, ErrRefreshReuse
	}

	access, accessJTI, err := g.jwt.MintAccess(claims.Subject, claims.TenantID, claims.Roles)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		return nil, nil, err
	}
	refresh, refreshJTI, familyID, err := g.jwt.MintRefresh(claims.Subject, claims.TenantID, claims.Roles, claims.FamilyID)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		return nil, nil, err
	}

	g.metricInc(MetricRefreshSuccess)
	g.auditEmit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditRefresh,
		Subject:   claims.Subject,
		TenantID:  claims.TenantID,
		JTI:       refreshJTI,
		FamilyID:  familyID,
		Success:   true,
	})

	pair := &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessJTI:    accessJTI,
		RefreshJTI:   refreshJTI,
		FamilyID:     familyID,
	}
	cookies := []*http.Cookie{
		g.accessCookie(access),
		g.refreshCookie(refresh),
		g.lastActivityCookie(time.Now()),
	}
	return pair, cookies, nil
}

// Logout revokes the presented tokens and returns expired cookies. Tokens
// that no longer parse (already expired) need no revocation and are skipped
// silently; the cookies are cleared regardless.
func (g *Gate) Logout(ctx context.Context, accessToken, refreshToken string) ([]*http.Cookie, error) {
	if g == nil || !g.ready {
		return nil, ErrGateNotReady
	}

	var firstErr error

	if accessToken != "" {
		if claims, err := g.jwt.Parse(accessToken, jwt.UseAccess); err == nil {
			if err := g.store.Revoke(ctx, revocation.ScopeToken, claims.JTI(), g.revocationTTL(claims), "logout"); err != nil {
				firstErr = ErrRevocationStoreUnavailable
			}
		}
	}
	if refreshToken != "" {
		if claims, err := g.jwt.Parse(refreshToken, jwt.UseRefresh); err == nil {
			if err := g.store.Revoke(ctx, revocation.ScopeToken, claims.JTI(), g.revocationTTL(claims), "logout"); err != nil {
				firstErr = ErrRevocationStoreUnavailable
			}
			g.revokeFamily(ctx, claims, "logout")
		}
	}

	g.metricInc(MetricLogout)
	g.auditEmit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditLogout,
		Success:   firstErr == nil,
	})

	return g.ClearSessionCookies(), firstErr
}

// LogoutAll revokes every token the subject held at this instant. Tokens
// minted afterwards (a fresh login) are unaffected.
func (g *Gate) LogoutAll(ctx context.Context, subject, reason string) error {
	if g == nil || !g.ready {
		return ErrGateNotReady
	}
	if reason == "" {
		reason = "logout everywhere"
	}
	err := g.store.Revoke(ctx, revocation.ScopeUser, subject, g.maxTokenLifetime(), reason)
	if err != nil {
		return ErrRevocationStoreUnavailable
	}
	g.metricInc(MetricLogoutAll)
	g.auditEmit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditLogoutAll,
		Subject:   subject,
		Success:   true,
	})
	return nil
}

// RevokeTenant suspends every session in a tenant. Administrative operation.
func (g *Gate) RevokeTenant(ctx context.Context, tenantID, reason string) error {
	if g == nil || !g.ready {
		return ErrGateNotReady
	}
	if err := g.store.Revoke(ctx, revocation.ScopeTenant, tenantID, g.maxTokenLifetime(), reason); err != nil {
		return ErrRevocationStoreUnavailable
	}
	return nil
}

func (g *Gate) revokeFamily(ctx context.Context, claims *jwt.Claims, reason string) {
	if claims.FamilyID == "" {
		return
	}
	if err := g.store.Revoke(ctx, revocation.ScopeFamily, claims.FamilyID, g.maxTokenLifetime(), reason); err != nil {
		g.metricInc(MetricStoreUnavailable)
		return
	}
	g.metricInc(MetricFamilyRevoked)
	g.auditEmit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditFamilyRevoked,
		Subject:   claims.Subject,
		TenantID:  claims.TenantID,
		FamilyID:  claims.FamilyID,
		Error:     reason,
	})
}

// revocationTTL covers the token's remaining lifetime plus verification
// leeway, so a revocation record always outlives every token it condemns.
func (g *Gate) revocationTTL(claims *jwt.Claims) time.Duration {
	ttl := g.maxTokenLifetime()
	if claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time) + g.config.JWT.Leeway
		if remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// maxTokenLifetime bounds the longest any outstanding token can remain valid.
func (g *Gate) maxTokenLifetime() time.Duration {
	return g.config.JWT.RefreshTTL + g.config.JWT.Leeway
}
