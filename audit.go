package authgate

import (
	"context"
	"io"

	internalaudit "github.com/croplane/authgate/internal/audit"
)

// AuditEvent is a structured audit record emitted by the gate.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the gate's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event types emitted by the gate.
const (
	AuditDecision         = "gate.decision"
	AuditRefresh          = "gate.refresh"
	AuditRefreshReuse     = "gate.refresh_reuse"
	AuditFamilyRevoked    = "gate.family_revoked"
	AuditLogout           = "gate.logout"
	AuditLogoutAll        = "gate.logout_all"
	AuditStoreUnavailable = "gate.store_unavailable"
	AuditFailOpenAllow    = "gate.fail_open_allow"
)

// auditDispatcherHandle is the gate's nil-safe handle to the async audit
// pipeline.
type auditDispatcherHandle = *internalaudit.Dispatcher

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

func (g *Gate) auditEmit(ctx context.Context, event AuditEvent) {
	if g == nil || g.audit == nil {
		return
	}
	g.audit.Emit(ctx, event)
}
