package request

// PrintReceiptRequest is the request body for printing a receipt.
type PrintReceiptRequest struct {
	Type          string `json:"type" binding:"required,oneof=purchase payment"`
	ID            string `json:"id" binding:"required,uuid"`
	TransactionID string `json:"transaction_id" binding:"required_if=Type payment"`
}
