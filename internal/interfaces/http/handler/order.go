package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places a new order
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload")
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns a page of orders, optionally narrowed by status or customer
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	if raw := c.Query("status"); raw != "" {
		status := order.Status(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid order status")
			return
		}
		result, err := h.orderService.ListByStatus(c.Request.Context(), status, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
		return
	}

	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID")
			return
		}
		result, err := h.orderService.ListByCustomer(c.Request.Context(), customerID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
		return
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// GetByID returns a single order with its line items
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateStatus moves an order through its lifecycle
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid status payload")
		return
	}

	status := order.Status(req.Status)
	if !status.IsValid() {
		h.BadRequest(c, "Invalid order status")
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel cancels an order and restocks its items
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, order.StatusCancelled)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
