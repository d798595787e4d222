package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	pricingService  *service.PricingService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *service.PurchaseService, pricingService *service.PricingService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, pricingService: pricingService}
}

// List handles listing purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	params := purchaseFilter(c)

	result, err := h.purchaseService.ListPurchases(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Purchases retrieved successfully", result)
}

// purchaseFilter reads the shared list query parameters. Malformed values are ignored.
func purchaseFilter(c *gin.Context) *repository.PurchaseFilterParams {
	params := &repository.PurchaseFilterParams{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if statusStr := c.Query("payment_status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.PaymentStatus(statusInt)
			params.PaymentStatus = &status
		}
	}
	if statusStr := c.Query("fulfillment_status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.FulfillmentStatus(statusInt)
			params.FulfillmentStatus = &status
		}
	}

	if supplierIDStr := c.Query("supplier_id"); supplierIDStr != "" {
		if supplierID, err := uuid.Parse(supplierIDStr); err == nil {
			params.SupplierID = &supplierID
		}
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}
	return params
}

// Quote prices lines and discounts without storing anything
func (h *PurchaseHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), lineItemInputs(req.Items), discountInput(req.Discount))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote calculated successfully", gin.H{
		"items":     quote.Items,
		"discount":  quote.Discount,
		"breakdown": quote.Breakdown.Rounded(),
	})
}

// Create handles creating a purchase
func (h *PurchaseHandler) Create(c *gin.Context) {
	operatorID := GetOperatorID(c)
	if operatorID == nil {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}

	var req request.CreatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), &service.CreatePurchaseInput{
		OperatorID:    *operatorID,
		SupplierID:    req.SupplierID,
		Date:          req.Date,
		Items:         lineItemInputs(req.Items),
		Discount:      discountInput(req.Discount),
		Deposit:       req.Deposit,
		DepositMethod: req.DepositMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase created successfully", purchase)
}

// Get handles getting a single purchase
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase retrieved successfully", purchase)
}

// Snapshot returns the rounded export view of a purchase
func (h *PurchaseHandler) Snapshot(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	snapshot, err := h.purchaseService.Snapshot(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase snapshot generated", snapshot)
}

// Receive books received quantities and restocks the catalog
func (h *PurchaseHandler) Receive(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	var req request.ReceivePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	quantities := make(map[uuid.UUID]decimal.Decimal, len(req.Lines))
	for _, line := range req.Lines {
		quantities[line.ItemID] = quantities[line.ItemID].Add(line.Quantity)
	}

	purchase, err := h.purchaseService.ReceivePurchase(c.Request.Context(), id, quantities)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase received successfully", purchase)
}

// Cancel handles cancelling a purchase
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.CancelPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase cancelled successfully", purchase)
}
