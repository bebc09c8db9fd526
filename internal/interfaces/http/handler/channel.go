package handler

import (
	"context"
	"strconv"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChannelQueries reads channel configuration
type ChannelQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*integrationapp.ChannelResponse, error)
	List(ctx context.Context) ([]integrationapp.ChannelResponse, error)
}

// ChannelAccess resolves actors and the channels they may pick
type ChannelAccess interface {
	LoadActor(ctx context.Context, userID uuid.UUID) (*identity.User, error)
	SelectableChannels(ctx context.Context, actor *identity.User, existingOrder bool) ([]integrationapp.ChannelListItemResponse, error)
}

// ChannelHandler handles channel endpoints
type ChannelHandler struct {
	BaseHandler
	channels ChannelQueries
	access   ChannelAccess
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(channels ChannelQueries, access ChannelAccess) *ChannelHandler {
	return &ChannelHandler{channels: channels, access: access}
}

// List godoc
// @Summary      List channels
// @Tags         channels
// @Produce      json
// @Success      200 {object} dto.Response{data=[]integrationapp.ChannelResponse}
// @Security     BearerAuth
// @Router       /channels [get]
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channels)
}

// Get godoc
// @Summary      Get channel by ID
// @Description  Returns the channel with its status mappings
// @Tags         channels
// @Produce      json
// @Param        id path string true "Channel ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.ChannelResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /channels/{id} [get]
func (h *ChannelHandler) Get(c *gin.Context) {
	channelID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "channel ID")
		return
	}

	channel, err := h.channels.GetByID(c.Request.Context(), channelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channel)
}

// Selectable godoc
// @Summary      Channels the caller may pick on an order
// @Description  The create set for a new order, the read set when existing_order is true
// @Tags         channels
// @Produce      json
// @Param        existing_order query bool false "Editing an existing order"
// @Success      200 {object} dto.Response{data=[]integrationapp.ChannelListItemResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /channels/selectable [get]
func (h *ChannelHandler) Selectable(c *gin.Context) {
	userID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	existingOrder := false
	if raw := c.Query("existing_order"); raw != "" {
		existingOrder, err = strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "existing_order must be a boolean")
			return
		}
	}

	ctx := c.Request.Context()
	actor, err := h.access.LoadActor(ctx, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	channels, err := h.access.SelectableChannels(ctx, actor, existingOrder)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channels)
}
