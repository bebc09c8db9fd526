package trade

import (
	"strings"

	"github.com/google/uuid"
)

// ChannelContext ties an order (or line) to the channel it came from and the
// identifier the channel uses for it. The pair (ChannelID, Identifier) is unique
// across orders whenever Identifier is set.
type ChannelContext struct {
	ChannelID  uuid.UUID
	Identifier string
}

// NewChannelContext creates a channel context
func NewChannelContext(channelID uuid.UUID, identifier string) ChannelContext {
	return ChannelContext{
		ChannelID:  channelID,
		Identifier: strings.TrimSpace(identifier),
	}
}

// IsSet reports whether a channel is assigned
func (c ChannelContext) IsSet() bool {
	return c.ChannelID != uuid.Nil
}

// HasIdentifier reports whether the channel assigned an identifier
func (c ChannelContext) HasIdentifier() bool {
	return c.Identifier != ""
}

// WithoutIdentifier returns the same channel with the identifier cleared
func (c ChannelContext) WithoutIdentifier() ChannelContext {
	return ChannelContext{ChannelID: c.ChannelID}
}
