package authgate

import (
	"errors"

	"github.com/croplane/authgate/csrf"
	"github.com/croplane/authgate/headers"
	"github.com/croplane/authgate/jwt"
	"github.com/croplane/authgate/revocation"
	"github.com/croplane/authgate/routes"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Gate]. Construction is allocation-only; no I/O happens
// until the first Evaluate call.
//
// Builder instances are intended to be configured during initialization and
// then discarded after Build.
type Builder struct {
	config    Config
	redis     *redis.Client
	auditSink AuditSink
	built     bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client backing the revocation store. Required: the
// gate must consult revocation state before treating any token as usable.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink supplies the audit event consumer. Implies nothing about
// Audit.Enabled; both must be set for events to flow.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Evaluate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Gate.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		RequireIAT:    true,
		KeyID:         cfg.JWT.KeyID,
		VerifyKeys:    cfg.JWT.VerifyKeys,
	})
	if err != nil {
		return nil, err
	}

	classifier, err := routes.NewClassifier(cfg.Routes)
	if err != nil {
		return nil, err
	}

	headerBuilder, err := headers.NewBuilder(headers.Config{
		Production:   cfg.Security.ProductionMode,
		ConnectHosts: cfg.Headers.ConnectHosts,
		ImageHosts:   cfg.Headers.ImageHosts,
		HSTSMaxAge:   cfg.Headers.HSTSMaxAge,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Gate{
		config:     cfg,
		classifier: classifier,
		csrf: csrf.NewValidator(csrf.Config{
			CookieName:  cfg.CSRF.CookieName,
			HeaderName:  cfg.CSRF.HeaderName,
			ExemptPaths: cfg.CSRF.ExemptPaths,
		}),
		headers: headerBuilder,
		jwt:     jwtManager,
		store:   revocation.NewStore(b.redis, cfg.Revocation.RedisPrefix, cfg.Revocation.OpTimeout),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		ready:   true,
	}, nil
}
