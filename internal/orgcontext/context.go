// Package orgcontext carries the calling tenant and actor through request contexts.
package orgcontext

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ErrTenantContextMissing is returned by every core operation invoked without
// a resolved tenant. No operation may execute with an ambiguous tenant.
var ErrTenantContextMissing = errors.New("tenant_context_missing")

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// ActorContextKey is the request context key for the acting user ID.
type ActorContextKey struct{}

// WithOrgID stores the org ID in the context.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, OrgContextKey{}, orgID)
}

// WithActorID stores the acting user ID in the context.
func WithActorID(ctx context.Context, actorID snowflake.ID) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, actorID)
}

// OrgIDFromContext returns the org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(OrgContextKey{}))
}

// ActorIDFromContext returns the acting user ID from context, if set.
func ActorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(ActorContextKey{}))
}

func idFromValue(value any) (snowflake.ID, bool) {
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
