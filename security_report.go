package authgate

import "time"

// SecurityReport is a read-only snapshot of the gate's security posture,
// returned by [Gate.SecurityReport]. Intended for startup logging and
// operational dashboards, never for client responses.
type SecurityReport struct {
	ProductionMode   bool
	SigningAlgorithm string
	FailClosed       bool
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	IdleTimeout      time.Duration
	CSRFTokenTTL     time.Duration
	SecureCookies    bool
	HSTSActive       bool
	AuditEnabled     bool
	MetricsEnabled   bool
	RouteRuleCount   int
	CSRFExemptCount  int
}

// SecurityReport summarizes the active configuration.
func (g *Gate) SecurityReport() SecurityReport {
	if g == nil || !g.ready {
		return SecurityReport{}
	}
	return SecurityReport{
		ProductionMode:   g.config.Security.ProductionMode,
		SigningAlgorithm: g.config.JWT.SigningMethod,
		FailClosed:       g.config.Security.FailClosed,
		AccessTTL:        g.config.JWT.AccessTTL,
		RefreshTTL:       g.config.JWT.RefreshTTL,
		IdleTimeout:      g.config.Session.IdleTimeout,
		CSRFTokenTTL:     g.config.CSRF.TokenTTL,
		SecureCookies:    g.config.Cookies.Secure,
		HSTSActive:       g.config.Security.ProductionMode,
		AuditEnabled:     g.config.Audit.Enabled,
		MetricsEnabled:   g.config.Metrics.Enabled,
		RouteRuleCount:   len(g.config.Routes),
		CSRFExemptCount:  len(g.config.CSRF.ExemptPaths),
	}
}
