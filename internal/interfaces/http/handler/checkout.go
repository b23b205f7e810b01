package handler

import (
	"github.com/gin-gonic/gin"

	checkoutapp "github.com/compucar/backend/internal/application/checkout"
)

// CheckoutHandler handles order placement and order history
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PlaceOrder places an order for the authenticated customer.
// The shipping cost is re-quoted server-side; any quote a client
// sends along is ignored.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req checkoutapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the authenticated customer's orders
func (h *CheckoutHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req checkoutapp.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.checkoutService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, &page)
}

// Get returns one of the authenticated customer's orders
func (h *CheckoutHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.checkoutService.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdminList returns orders across all customers
func (h *CheckoutHandler) AdminList(c *gin.Context) {
	var req checkoutapp.AdminListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.AdminList(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdminGet returns any order by ID
func (h *CheckoutHandler) AdminGet(c *gin.Context) {
	orderID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.checkoutService.AdminGet(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus moves an order through its lifecycle
func (h *CheckoutHandler) ChangeStatus(c *gin.Context) {
	orderID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req checkoutapp.ChangeOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.ChangeStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
