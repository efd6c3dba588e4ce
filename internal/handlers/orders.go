package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/orderdesk-backend/internal/platform/logger"
	"github.com/yungbote/orderdesk-backend/internal/services"
	"github.com/yungbote/orderdesk-backend/internal/uow"
)

type OrderHandler struct {
	log *logger.Logger
	svc services.OrderService
}

func NewOrderHandler(log *logger.Logger, svc services.OrderService) *OrderHandler {
	return &OrderHandler{log: log.With("handler", "OrderHandler"), svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)
	order, err := h.svc.Cancel(c.Request.Context(), id, body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("order request failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch uow.CodeOf(err) {
	case uow.CodeValidation:
		return http.StatusBadRequest
	case uow.CodeNotFound:
		return http.StatusNotFound
	case uow.CodeConflict:
		return http.StatusConflict
	case uow.CodeInvariantViolation, uow.CodePreconditionFailed:
		return http.StatusUnprocessableEntity
	case uow.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
