package identity

import (
	"strings"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// SystemUserID identifies the internal system actor. It bypasses channel access checks.
var SystemUserID = uuid.Nil

// ChannelAccess is the kind of access a user holds on a channel
type ChannelAccess string

const (
	ChannelAccessCreate ChannelAccess = "create"
	ChannelAccessRead   ChannelAccess = "read"
)

// IsValid checks if the access kind is known
func (a ChannelAccess) IsValid() bool {
	return a == ChannelAccessCreate || a == ChannelAccessRead
}

// User is an acting user as seen by the channel context: its preferred channel
// and the channels it may create orders under or read orders from.
type User struct {
	shared.BaseAggregateRoot
	Username              string
	CurrentChannelID      *uuid.UUID
	AllowedCreateChannels []uuid.UUID
	AllowedReadChannels   []uuid.UUID
}

// NewUser creates a new user with no channel access
func NewUser(username string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 100 {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	return &User{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Username:              username,
		AllowedCreateChannels: make([]uuid.UUID, 0),
		AllowedReadChannels:   make([]uuid.UUID, 0),
	}, nil
}

// IsSystem reports whether the user is the internal system actor
func (u *User) IsSystem() bool {
	return u.ID == SystemUserID
}

// SetCurrentChannel sets the user's preferred channel. Nil clears it.
func (u *User) SetCurrentChannel(channelID *uuid.UUID) {
	u.CurrentChannelID = channelID
	u.Touch()
}

// Grant adds a channel to the create or read set. Create access implies read access.
func (u *User) Grant(channelID uuid.UUID, access ChannelAccess) error {
	if !access.IsValid() {
		return shared.NewDomainError("INVALID_CHANNEL_ACCESS", "Unknown channel access: "+string(access))
	}
	if access == ChannelAccessCreate {
		u.AllowedCreateChannels = appendUnique(u.AllowedCreateChannels, channelID)
	}
	u.AllowedReadChannels = appendUnique(u.AllowedReadChannels, channelID)
	u.Touch()
	return nil
}

// Revoke removes a channel from the given set
func (u *User) Revoke(channelID uuid.UUID, access ChannelAccess) {
	switch access {
	case ChannelAccessCreate:
		u.AllowedCreateChannels = remove(u.AllowedCreateChannels, channelID)
	case ChannelAccessRead:
		u.AllowedReadChannels = remove(u.AllowedReadChannels, channelID)
		u.AllowedCreateChannels = remove(u.AllowedCreateChannels, channelID)
	}
	u.Touch()
}

// CanCreate reports whether the user may create orders under the channel.
// Membership in the allowed-create set is the only rule.
func (u *User) CanCreate(channelID uuid.UUID) bool {
	return contains(u.AllowedCreateChannels, channelID)
}

// CanRead reports whether the user may reference the channel on existing orders
func (u *User) CanRead(channelID uuid.UUID) bool {
	return contains(u.AllowedReadChannels, channelID)
}

// SelectableChannels returns the channels the user may pick on an order:
// the read set for an existing order, the create set for a new one.
func (u *User) SelectableChannels(existingOrder bool) []uuid.UUID {
	src := u.AllowedCreateChannels
	if existingOrder {
		src = u.AllowedReadChannels
	}
	out := make([]uuid.UUID, len(src))
	copy(out, src)
	return out
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func remove(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
