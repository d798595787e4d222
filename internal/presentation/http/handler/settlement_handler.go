package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
)

// SettlementHandler handles payments against purchases and their deletion
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// ListDue lists purchases that still have an amount due
func (h *SettlementHandler) ListDue(c *gin.Context) {
	result, err := h.settlementService.ListDue(c.Request.Context(), purchaseFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Due purchases retrieved successfully", result)
}

// Pay applies a partial payment
func (h *SettlementHandler) Pay(c *gin.Context) {
	operatorID := GetOperatorID(c)
	if operatorID == nil {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.settlementService.ApplyPartialPayment(c.Request.Context(), &service.PaymentInput{
		SessionID:  GetSessionID(c),
		OperatorID: *operatorID,
		PurchaseID: id,
		Amount:     *req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", result)
}

// ClearDue pays the whole amount due
func (h *SettlementHandler) ClearDue(c *gin.Context) {
	operatorID := GetOperatorID(c)
	if operatorID == nil {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	var req request.ClearDueRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.settlementService.ClearFullDue(c.Request.Context(), &service.PaymentInput{
		SessionID:  GetSessionID(c),
		OperatorID: *operatorID,
		PurchaseID: id,
		Method:     req.Method,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Due cleared successfully", result)
}

// Delete handles deleting a purchase
func (h *SettlementHandler) Delete(c *gin.Context) {
	operatorID := GetOperatorID(c)
	if operatorID == nil {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	if err := h.settlementService.DeletePurchase(c.Request.Context(), GetSessionID(c), *operatorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase deleted successfully", nil)
}

// ListTransactions lists the payments of a purchase
func (h *SettlementHandler) ListTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}

	txs, err := h.settlementService.ListTransactions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", txs)
}

// PaymentMethods lists the methods the store accepts
func (h *SettlementHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.settlementService.PaymentMethods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment methods retrieved successfully", methods)
}

// Receipt returns the receipt of one payment as it stood when it was taken
func (h *SettlementHandler) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "purchase")
	if !ok {
		return
	}
	txID, ok := parseIDParam(c, "tx_id", "transaction")
	if !ok {
		return
	}

	_, receipt, err := h.settlementService.Receipt(c.Request.Context(), id, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment receipt retrieved successfully", receipt)
}
