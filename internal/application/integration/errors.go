package integration

import (
	"strings"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrChannelMissing   = shared.NewDomainError("CHANNEL_MISSING", "No channel given and the user has no current channel")
	ErrNotCreateChannel = shared.NewDomainError("NOT_CREATE_CHANNEL", "User cannot create orders under the channel")
	ErrChannelException = shared.NewDomainError("CHANNEL_EXCEPTION", "Orders have unresolved channel exceptions")

	ErrChannelNotSelectable = shared.NewDomainError("CHANNEL_NOT_SELECTABLE", "User cannot select the channel on this order")
)

// NewChannelMissingError names the user that needs a current channel
func NewChannelMissingError(username string) *shared.DomainError {
	return ErrChannelMissing.Withf("Go to user preferences and select a current_channel for %s", username)
}

// NewNotCreateChannelError names the channel the user may not create under
func NewNotCreateChannelError(channelName string) *shared.DomainError {
	return ErrNotCreateChannel.Withf("You cannot create order under channel %s", channelName)
}

// NewChannelNotSelectableError names the user and the channel outside its selectable set
func NewChannelNotSelectableError(username string, channelID uuid.UUID) *shared.DomainError {
	return ErrChannelNotSelectable.Withf("Channel %s is not selectable for %s", channelID, username)
}

// ChannelExceptionError lists the orders that block a strict operation.
// It matches ErrChannelException under errors.Is.
type ChannelExceptionError struct {
	OrderIDs []uuid.UUID
	err      *shared.DomainError
}

// NewChannelExceptionError builds the error from the blocking orders' ids and display names
func NewChannelExceptionError(orderIDs []uuid.UUID, names []string) *ChannelExceptionError {
	return &ChannelExceptionError{
		OrderIDs: orderIDs,
		err:      ErrChannelException.Withf("You missed some unresolved exceptions in sale(s) %s", strings.Join(names, ", ")),
	}
}

func (e *ChannelExceptionError) Error() string {
	return e.err.Message
}

// Unwrap exposes the underlying domain error
func (e *ChannelExceptionError) Unwrap() error {
	return e.err
}
