// Package middleware provides HTTP middleware for the channel sync API.
package middleware

import (
	"context"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/infrastructure/persistence/datascope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadChannelsKey is the gin context key holding the actor's readable channels
const ReadChannelsKey = "read_channels"

// ReadChannelResolver returns the channels a user may read orders from
type ReadChannelResolver interface {
	AllowedReadChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ChannelScope restricts downstream queries to the acting user's readable
// channels. It runs after BearerAuth or HeaderIdentity. Requests without a user, and the
// system user, are not scoped.
func ChannelScope(resolver ReadChannelResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		userIDStr := GetUserID(c)
		if userIDStr == "" {
			c.Next()
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil || userID == identity.SystemUserID {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		channels, err := resolver.AllowedReadChannels(ctx, userID)
		if err != nil {
			// Fail closed: an unresolved scope reads nothing
			log.Error("Failed to load readable channels",
				zap.String("user_id", userIDStr),
				zap.Error(err))
			channels = nil
		}

		c.Set(ReadChannelsKey, channels)
		c.Request = c.Request.WithContext(datascope.WithReadChannels(ctx, userID, channels))
		c.Next()
	}
}

// GetReadChannels returns the channels stored by ChannelScope and whether a scope was set
func GetReadChannels(c *gin.Context) ([]uuid.UUID, bool) {
	v, exists := c.Get(ReadChannelsKey)
	if !exists {
		return nil, false
	}
	channels, ok := v.([]uuid.UUID)
	return channels, ok
}
