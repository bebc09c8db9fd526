package handler

import (
	"github.com/gin-gonic/gin"
)

// ChannelExceptionHandler handles exception endpoints not nested under an order
type ChannelExceptionHandler struct {
	BaseHandler
	exceptions ExceptionUseCases
}

// NewChannelExceptionHandler creates a new ChannelExceptionHandler
func NewChannelExceptionHandler(exceptions ExceptionUseCases) *ChannelExceptionHandler {
	return &ChannelExceptionHandler{exceptions: exceptions}
}

// Resolve godoc
// @Summary      Resolve a channel exception
// @Tags         channel-exceptions
// @Produce      json
// @Param        id path string true "Channel Exception ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.ChannelExceptionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /channel-exceptions/{id}/resolve [post]
func (h *ChannelExceptionHandler) Resolve(c *gin.Context) {
	actorID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	exceptionID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "exception ID")
		return
	}

	exception, err := h.exceptions.ResolveException(c.Request.Context(), exceptionID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exception)
}
