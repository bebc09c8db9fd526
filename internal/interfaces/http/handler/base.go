package handler

import (
	"errors"
	"net/http"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/interfaces/http/dto"
	"github.com/erp/channelsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errNoActor = errors.New("no acting user on request")

// BaseHandler writes the dto envelopes shared by every handler
type BaseHandler struct{}

// requestID prefers the id assigned by the RequestID middleware over the raw header
func requestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// actingUser is the user creating, copying or resolving on behalf of the request,
// as recorded by BearerAuth or HeaderIdentity. The nil uuid is the system user.
func actingUser(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetUserID(c)
	if raw == "" {
		return uuid.Nil, errNoActor
	}
	return uuid.Parse(raw)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// Page sends one page of a list with its meta
func (h *BaseHandler) Page(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Page(data, total, page, pageSize))
}

// Error sends an error envelope carrying the request id
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.Fail(code, message, requestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InvalidID rejects a malformed uuid path parameter
func (h *BaseHandler) InvalidID(c *gin.Context, name string) {
	h.BadRequest(c, "Invalid "+name+" format")
}

// BindError rejects a body or query that failed to bind. Validation failures
// carry per-field details.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.Invalid(requestID(c), details))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
}

// HandleError maps domain errors through their code. Any other error is
// recorded on the gin context and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if code := shared.Code(err); code != "" {
		apiCode, status := dto.ResolveDomainCode(code)
		h.Error(c, status, apiCode, err.Error())
		return
	}
	if err == nil {
		return
	}
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
