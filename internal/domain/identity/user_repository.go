package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the user directory as consumed by the channel context
type UserRepository interface {
	// FindByID finds a user with its channel access sets loaded
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Save creates or updates a user and replaces its channel access rows
	Save(ctx context.Context, user *User) error

	// AllowedCreateChannels returns the ids of channels the user may create orders under
	AllowedCreateChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// AllowedReadChannels returns the ids of channels the user may read orders from
	AllowedReadChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
