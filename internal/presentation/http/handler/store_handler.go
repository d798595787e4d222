package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
)

// StoreHandler handles the current store and its settings
type StoreHandler struct {
	storeService *service.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// Current returns the store selected for the request
func (h *StoreHandler) Current(c *gin.Context) {
	store, err := h.storeService.CurrentStore(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Store retrieved successfully", store)
}

// UpdatePaymentMethods replaces the payment methods of the store
func (h *StoreHandler) UpdatePaymentMethods(c *gin.Context) {
	var req request.UpdatePaymentMethodsRequest
	if !bindJSON(c, &req) {
		return
	}

	store, err := h.storeService.UpdatePaymentMethods(c.Request.Context(), req.Methods)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment methods updated successfully", store.Settings)
}
