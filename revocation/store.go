package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scope identifies which identifier class a revocation record applies to.
type Scope string

const (
	// ScopeToken revokes a single JTI.
	ScopeToken Scope = "token"
	// ScopeFamily revokes an entire refresh rotation family.
	ScopeFamily Scope = "family"
	// ScopeUser revokes every token a user held at revocation time.
	ScopeUser Scope = "user"
	// ScopeTenant revokes every token in a tenant at revocation time.
	ScopeTenant Scope = "tenant"
)

// ErrStoreUnavailable is returned when Redis cannot be reached within the
// operation timeout. It is an infrastructure fault, not a client error, and
// must be logged and counted separately from ordinary rejections.
var ErrStoreUnavailable = errors.New("revocation store unavailable")

// ErrInvalidTTL is returned when a revocation write carries a non-positive TTL.
var ErrInvalidTTL = errors.New("revocation ttl must be positive")

// Consume outcomes for first-use refresh token checks.
const (
	consumeStatusReused   int64 = 0
	consumeStatusConsumed int64 = 1
)

// consumeScript atomically records first use of a refresh JTI. If the key
// already exists the token was used before: the caller must treat it as a
// reuse/theft signal. Two concurrent refreshes with the same token race on
// this script; exactly one observes status 1.
const consumeScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
return 1
`

var consumeLua = redis.NewScript(consumeScript)

// Record is a parsed revocation record.
type Record struct {
	Scope     Scope
	Reason    string
	RevokedAt time.Time
}

// Check carries the token coordinates consulted on every request.
type Check struct {
	JTI      string
	FamilyID string
	Subject  string
	TenantID string
	IssuedAt time.Time
}

// Store is the Redis revocation store. Safe for concurrent use.
type Store struct {
	redis     *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewStore wraps client with the given key prefix and per-operation timeout.
// An empty prefix is honored: keys then take the bare revoked:{scope}:{id}
// form. A zero timeout defaults to 50ms; the gate path must never block on a
// slow Redis beyond that.
func NewStore(client *redis.Client, prefix string, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = 50 * time.Millisecond
	}
	return &Store{
		redis:     client,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *Store) key(scope Scope, id string) string {
	if s.prefix == "" {
		return "revoked:" + string(scope) + ":" + id
	}
	return s.prefix + ":revoked:" + string(scope) + ":" + id
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// encodeRecord stores the revocation unix timestamp and reason in one value.
func encodeRecord(revokedAt time.Time, reason string) string {
	return strconv.FormatInt(revokedAt.Unix(), 10) + "|" + reason
}

func decodeRecord(scope Scope, raw string) Record {
	rec := Record{Scope: scope}
	ts, reason, ok := strings.Cut(raw, "|")
	if !ok {
		rec.Reason = raw
		return rec
	}
	if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
		rec.RevokedAt = time.Unix(unix, 0)
	}
	rec.Reason = reason
	return rec
}

// Revoke writes a revocation record. ttl must cover the maximum remaining
// lifetime of any token the record could apply to.
func (s *Store) Revoke(ctx context.Context, scope Scope, id string, ttl time.Duration, reason string) error {
	if id == "" {
		return errors.New("revocation identifier required")
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.redis.Set(opCtx, s.key(scope, id), encodeRecord(time.Now(), reason), ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked checks all applicable scopes for the token in one round trip.
// Scope precedence for the returned record: token, family, user, tenant.
func (s *Store) IsRevoked(ctx context.Context, check Check) (*Record, error) {
	keys := make([]string, 0, 4)
	scopes := make([]Scope, 0, 4)

	if check.JTI != "" {
		keys = append(keys, s.key(ScopeToken, check.JTI))
		scopes = append(scopes, ScopeToken)
	}
	if check.FamilyID != "" {
		keys = append(keys, s.key(ScopeFamily, check.FamilyID))
		scopes = append(scopes, ScopeFamily)
	}
	if check.Subject != "" {
		keys = append(keys, s.key(ScopeUser, check.Subject))
		scopes = append(scopes, ScopeUser)
	}
	if check.TenantID != "" {
		keys = append(keys, s.key(ScopeTenant, check.TenantID))
		scopes = append(scopes, ScopeTenant)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	values, err := s.redis.MGet(opCtx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok || raw == "" {
			continue
		}
		rec := decodeRecord(scopes[i], raw)
		switch scopes[i] {
		case ScopeToken, ScopeFamily:
			return &rec, nil
		case ScopeUser, ScopeTenant:
			// Time-bounded scopes only condemn tokens issued at or before
			// the revocation instant.
			if !check.IssuedAt.IsZero() && check.IssuedAt.After(rec.RevokedAt) {
				continue
			}
			return &rec, nil
		}
	}
	return nil, nil
}

// ConsumeRefresh atomically records the first use of a refresh JTI, revoking
// it for any later presentation. Returns true when this call was the first
// use; false signals reuse and the caller must condemn the whole family.
func (s *Store) ConsumeRefresh(ctx context.Context, jti string, ttl time.Duration, reason string) (bool, error) {
	if jti == "" {
		return false, errors.New("revocation identifier required")
	}
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	status, err := consumeLua.Run(opCtx, s.redis,
		[]string{s.key(ScopeToken, jti)},
		encodeRecord(time.Now(), reason), seconds,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return status == consumeStatusConsumed, nil
}

// Ping verifies store reachability; used by readiness probes, never by the
// request path.
func (s *Store) Ping(ctx context.Context) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := s.redis.Ping(opCtx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
