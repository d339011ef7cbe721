package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	"go.uber.org/zap"
)

const (
	HeaderOrg   = "X-Org-ID"
	HeaderActor = "X-Actor-ID"
)

// OrgContext resolves the calling tenant and actor from request headers and
// injects them into the request context. The credential mechanism that
// produces the headers lives upstream; here an absent tenant is a hard stop.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawOrg := strings.TrimSpace(c.GetHeader(HeaderOrg))
		orgID, err := snowflake.ParseString(rawOrg)
		if rawOrg == "" || err != nil {
			AbortWithError(c, orgcontext.ErrTenantContextMissing)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)

		if rawActor := strings.TrimSpace(c.GetHeader(HeaderActor)); rawActor != "" {
			if actorID, err := snowflake.ParseString(rawActor); err == nil {
				ctx = orgcontext.WithActorID(ctx, actorID)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger emits one structured log line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	named := log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		named.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
