package integration

import (
	"context"

	"github.com/google/uuid"
)

// ChannelRepository is the read side of channel configuration plus the writes
// needed to seed it
type ChannelRepository interface {
	// FindByID finds a channel with its action mappings
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)

	// FindByCode finds a channel by its unique code
	FindByCode(ctx context.Context, code string) (*Channel, error)

	// FindAll returns all channels ordered by code
	FindAll(ctx context.Context) ([]Channel, error)

	// FindByIDs returns the channels with the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Channel, error)

	// FindActionForStatus returns the mapping for (channel, status).
	// It returns an UNKNOWN_CHANNEL_STATUS error when the status is not mapped.
	FindActionForStatus(ctx context.Context, channelID uuid.UUID, status string) (*ChannelActionMapping, error)

	// Save creates or updates a channel and replaces its action mappings
	Save(ctx context.Context, channel *Channel) error
}

// ChannelExceptionRepository persists channel exceptions
type ChannelExceptionRepository interface {
	// FindByID finds an exception by id
	FindByID(ctx context.Context, id uuid.UUID) (*ChannelException, error)

	// FindByOrigin returns the exceptions raised against origin under channelID,
	// unresolved first. Exceptions from other channels are never returned.
	FindByOrigin(ctx context.Context, origin ExceptionOrigin, channelID uuid.UUID) ([]ChannelException, error)

	// Save creates or updates an exception
	Save(ctx context.Context, exception *ChannelException) error
}
