package domain

import (
	"context"
	"time"
)

type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditRemoved AuditAction = "removed"
)

// AuditEntry records who changed a dealer and how.
type AuditEntry struct {
	DealerID string
	Action   AuditAction
	ActorID  string
	At       time.Time
}

type principalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
