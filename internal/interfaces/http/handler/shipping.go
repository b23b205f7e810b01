package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	shippingapp "github.com/compucar/backend/internal/application/shipping"
)

// ShippingHandler serves region directories and shipping quotes
type ShippingHandler struct {
	BaseHandler
	regions *shippingapp.RegionService
	quotes  *shippingapp.QuoteService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(regions *shippingapp.RegionService, quotes *shippingapp.QuoteService) *ShippingHandler {
	return &ShippingHandler{
		regions: regions,
		quotes:  quotes,
	}
}

// Wilayas lists the deliverable wilayas
func (h *ShippingHandler) Wilayas(c *gin.Context) {
	resp, err := h.regions.Wilayas(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Communes lists the communes of a wilaya
func (h *ShippingHandler) Communes(c *gin.Context) {
	wilayaID, ok := h.wilayaQuery(c)
	if !ok {
		return
	}

	resp, err := h.regions.Communes(c.Request.Context(), wilayaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Stopdesks lists the carrier pickup points of a wilaya
func (h *ShippingHandler) Stopdesks(c *gin.Context) {
	wilayaID, ok := h.wilayaQuery(c)
	if !ok {
		return
	}

	resp, err := h.regions.Stopdesks(c.Request.Context(), wilayaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Quote computes the parcel and shipping cost for a cart
func (h *ShippingHandler) Quote(c *gin.Context) {
	var req shippingapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.quotes.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ShippingHandler) wilayaQuery(c *gin.Context) (int, bool) {
	wilayaID, err := strconv.Atoi(c.Query("wilaya"))
	if err != nil || wilayaID < 1 || wilayaID > 58 {
		h.BadRequest(c, "Query parameter 'wilaya' must be a wilaya number between 1 and 58")
		return 0, false
	}
	return wilayaID, true
}
