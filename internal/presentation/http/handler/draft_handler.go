package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockroom-api/pkg/apperror"
)

// DraftHandler handles the in-progress purchase order of the caller's session
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Start returns the session's draft, creating it when missing
func (h *DraftHandler) Start(c *gin.Context) {
	view, err := h.draftService.Start(c.Request.Context(), GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft ready", view)
}

// Get returns the session's draft with its totals
func (h *DraftHandler) Get(c *gin.Context) {
	view, err := h.draftService.Get(c.Request.Context(), GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft retrieved successfully", view)
}

// AddItem adds a line to the draft
func (h *DraftHandler) AddItem(c *gin.Context) {
	var req request.LineItemRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.draftService.AddItem(c.Request.Context(), GetSessionID(c), lineItemInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item added", view)
}

// UpdateItem changes quantity and/or unit price of one line
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id", "item")
	if !ok {
		return
	}

	var req request.UpdateLineItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == nil && req.UnitPrice == nil {
		response.Error(c, apperror.NewFieldValidationError("quantity", "quantity or unit_price is required"))
		return
	}

	ctx := c.Request.Context()
	sessionID := GetSessionID(c)
	var (
		view *service.DraftView
		err  error
	)
	if req.Quantity != nil {
		if view, err = h.draftService.UpdateQuantity(ctx, sessionID, itemID, *req.Quantity); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.UnitPrice != nil {
		if view, err = h.draftService.UpdateUnitPrice(ctx, sessionID, itemID, *req.UnitPrice); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.OK(c, "Item updated", view)
}

// RemoveItem drops one line
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id", "item")
	if !ok {
		return
	}

	view, err := h.draftService.RemoveItem(c.Request.Context(), GetSessionID(c), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed", view)
}

// ClearItems drops every line
func (h *DraftHandler) ClearItems(c *gin.Context) {
	view, err := h.draftService.ClearItems(c.Request.Context(), GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Items cleared", view)
}

// SetDiscount replaces the discount stack
func (h *DraftHandler) SetDiscount(c *gin.Context) {
	var req request.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.draftService.SetDiscount(c.Request.Context(), GetSessionID(c), discountInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount applied", view)
}

// SetDetails updates supplier and notes
func (h *DraftHandler) SetDetails(c *gin.Context) {
	var req request.DraftDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.draftService.SetDetails(c.Request.Context(), GetSessionID(c), service.DraftDetailsInput{
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft updated", view)
}

// Cancel discards the draft
func (h *DraftHandler) Cancel(c *gin.Context) {
	if err := h.draftService.Cancel(c.Request.Context(), GetSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft discarded", nil)
}

// Snapshot returns the export view of the draft
func (h *DraftHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.draftService.Snapshot(c.Request.Context(), GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft snapshot generated", snapshot)
}

// Submit stores the draft as a purchase
func (h *DraftHandler) Submit(c *gin.Context) {
	operatorID := GetOperatorID(c)
	if operatorID == nil {
		response.Unauthorized(c, "Operator not authenticated")
		return
	}

	var req request.SubmitDraftRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	purchase, err := h.draftService.Submit(c.Request.Context(), GetSessionID(c), &service.SubmitInput{
		OperatorID:    *operatorID,
		Date:          req.Date,
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
