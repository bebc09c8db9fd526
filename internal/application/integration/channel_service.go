package integration

import (
	"context"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
)

// ChannelService exposes channel configuration to the rest of the application
type ChannelService struct {
	channels integration.ChannelRepository
}

// NewChannelService creates a new ChannelService
func NewChannelService(channels integration.ChannelRepository) *ChannelService {
	return &ChannelService{channels: channels}
}

// GetByID returns a channel with its mappings
func (s *ChannelService) GetByID(ctx context.Context, id uuid.UUID) (*ChannelResponse, error) {
	channel, err := s.channels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToChannelResponse(channel)
	return &resp, nil
}

// List returns all channels
func (s *ChannelService) List(ctx context.Context) ([]ChannelResponse, error) {
	channels, err := s.channels.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelResponse, len(channels))
	for i := range channels {
		out[i] = ToChannelResponse(&channels[i])
	}
	return out, nil
}

// GetDefaults returns the attributes the channel cascades onto its orders
func (s *ChannelService) GetDefaults(ctx context.Context, channelID uuid.UUID) (trade.ChannelDefaults, error) {
	channel, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return trade.ChannelDefaults{}, err
	}
	return channel.Defaults(), nil
}

// GetActionForStatus returns the mapping of an external status on a channel
func (s *ChannelService) GetActionForStatus(ctx context.Context, channelID uuid.UUID, status string) (*integration.ChannelActionMapping, error) {
	return s.channels.FindActionForStatus(ctx, channelID, status)
}

// ChannelTypes returns the source of each known channel in ids
func (s *ChannelService) ChannelTypes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	channels, err := s.channels.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		out[c.ID] = c.Source.String()
	}
	return out, nil
}
