package integration

import (
	"context"
	"errors"
	"slices"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemUsername is the display name of the internal actor
const SystemUsername = "root"

// SystemActor returns the internal actor that bypasses channel access checks
func SystemActor() *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: identity.SystemUserID}},
		Username:          SystemUsername,
	}
}

// AccessGate answers which channels an actor may create under or read from
type AccessGate struct {
	users    identity.UserRepository
	channels integration.ChannelRepository
	logger   *zap.Logger
}

// NewAccessGate creates a new AccessGate
func NewAccessGate(users identity.UserRepository, channels integration.ChannelRepository, logger *zap.Logger) *AccessGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGate{users: users, channels: channels, logger: logger}
}

// LoadActor loads a user with its channel access sets. uuid.Nil loads the system actor.
func (g *AccessGate) LoadActor(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	if userID == identity.SystemUserID {
		return SystemActor(), nil
	}
	return g.users.FindByID(ctx, userID)
}

// CanCreate reports whether the actor may create orders under the channel
func (g *AccessGate) CanCreate(actor *identity.User, channelID uuid.UUID) bool {
	return actor.CanCreate(channelID)
}

// AllowedCreateChannels returns the channels the user may create orders under
func (g *AccessGate) AllowedCreateChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.users.AllowedCreateChannels(ctx, userID)
}

// AllowedReadChannels returns the channels the user may read orders from
func (g *AccessGate) AllowedReadChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.users.AllowedReadChannels(ctx, userID)
}

// SelectableChannels returns the channels the actor may pick on an order:
// the read set for an existing order, the create set for a new one.
// The system actor may pick any channel.
func (g *AccessGate) SelectableChannels(ctx context.Context, actor *identity.User, existingOrder bool) ([]ChannelListItemResponse, error) {
	var (
		channels []integration.Channel
		err      error
	)
	if actor.IsSystem() {
		channels, err = g.channels.FindAll(ctx)
	} else {
		channels, err = g.channels.FindByIDs(ctx, actor.SelectableChannels(existingOrder))
	}
	if err != nil {
		return nil, err
	}
	out := make([]ChannelListItemResponse, len(channels))
	for i := range channels {
		out[i] = ToChannelListItemResponse(&channels[i])
	}
	return out, nil
}

// CheckSelectable fails with CHANNEL_NOT_SELECTABLE unless the actor may pick
// the channel on an order, by the same rule as SelectableChannels
func (g *AccessGate) CheckSelectable(actor *identity.User, channelID uuid.UUID, existingOrder bool) error {
	if actor.IsSystem() || slices.Contains(actor.SelectableChannels(existingOrder), channelID) {
		return nil
	}
	return NewChannelNotSelectableError(actor.Username, channelID)
}

// DefaultChannel resolves the channel for a new order without one:
// the explicit context channel, then the actor's current channel.
func (g *AccessGate) DefaultChannel(actor *identity.User, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}
	if actor.CurrentChannelID != nil && *actor.CurrentChannelID != uuid.Nil {
		return *actor.CurrentChannelID, nil
	}
	return uuid.Nil, NewChannelMissingError(actor.Username)
}

// CheckCreateAccess returns the ids of orders whose channel the actor may not
// create under. Unless silent, a non-empty result also yields a NOT_CREATE_CHANNEL
// error naming the first offending channel. The system actor always passes.
func (g *AccessGate) CheckCreateAccess(ctx context.Context, actor *identity.User, orders []*trade.SalesOrder, silent bool) ([]uuid.UUID, error) {
	if actor.IsSystem() {
		return nil, nil
	}

	var denied []uuid.UUID
	var firstChannel uuid.UUID
	for _, order := range orders {
		if actor.CanCreate(order.Channel.ChannelID) {
			continue
		}
		if len(denied) == 0 {
			firstChannel = order.Channel.ChannelID
		}
		denied = append(denied, order.ID)
	}
	if len(denied) == 0 || silent {
		return denied, nil
	}

	name := firstChannel.String()
	channel, err := g.channels.FindByID(ctx, firstChannel)
	switch {
	case err == nil:
		name = channel.Name
	case !errors.Is(err, integration.ErrChannelNotFound):
		return denied, err
	}
	g.logger.Warn("actor lacks create access on order channel",
		zap.String("user", actor.Username),
		zap.String("channel", name),
		zap.Int("orders", len(denied)))
	return denied, NewNotCreateChannelError(name)
}
