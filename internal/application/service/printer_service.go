package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/printer"
	"github.com/shopspring/decimal"
)

const receiptTimeLayout = "2006-01-02 15:04"

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	purchases   *PurchaseService
	settlements *SettlementService
	stores      *StoreService
	printerType string
	width       int
	log         *logger.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	purchases *PurchaseService,
	settlements *SettlementService,
	stores *StoreService,
	printerType string,
	width int,
	log *logger.Logger,
) *PrinterService {
	if width <= 0 {
		width = 32
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PrinterService{
		printer:     p,
		purchases:   purchases,
		settlements: settlements,
		stores:      stores,
		printerType: printerType,
		width:       width,
		log:         log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// PrintPurchaseReceipt prints a purchase order with its line items and totals.
// The receipt is returned even when printing fails so callers can show it.
func (s *PrinterService) PrintPurchaseReceipt(ctx context.Context, purchaseID uuid.UUID) (*entity.Receipt, error) {
	purchase, err := s.purchases.GetPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		Header:    receiptHeader(store),
		Title:     "PURCHASE ORDER",
		Reference: purchase.PurchaseNo,
		Date:      purchase.Date.Format(receiptTimeLayout),
		Paid:      purchase.AmountPaid,
		Due:       purchase.AmountDue,
		Status:    purchase.PaymentStatus.String(),
		Notes:     purchase.Notes,
	}
	if purchase.Supplier != nil {
		receipt.Counterparty = purchase.Supplier.Name
	} else if purchase.Customer != nil {
		receipt.Counterparty = purchase.Customer.Name
	}

	for _, item := range purchase.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}

	receipt.Totals = append(receipt.Totals,
		entity.ReceiptLine{Label: "Subtotal", Amount: purchase.SubtotalExclusiveOfTax},
		entity.ReceiptLine{Label: "Tax", Amount: purchase.TotalTax},
	)
	discounts := []entity.ReceiptLine{
		{Label: fmt.Sprintf("Discount (%s%%)", purchase.ManualDiscountPercent.String()), Amount: purchase.ManualDiscountAmount},
		{Label: "Membership", Amount: purchase.MembershipDiscountAmount},
		{Label: fmt.Sprintf("Points (%d)", purchase.PointsRedeemed), Amount: purchase.PointsDiscountAmount},
		{Label: "Balance", Amount: purchase.BalanceDiscountAmount},
	}
	for _, line := range discounts {
		if line.Amount.IsPositive() {
			receipt.Totals = append(receipt.Totals, entity.ReceiptLine{Label: line.Label, Amount: line.Amount.Neg()})
		}
	}
	receipt.Totals = append(receipt.Totals, entity.ReceiptLine{Label: "TOTAL", Amount: purchase.GrandTotal})

	return receipt, s.print(ctx, receipt)
}

// PrintPaymentReceipt prints the receipt of one recorded payment.
func (s *PrinterService) PrintPaymentReceipt(ctx context.Context, purchaseID, transactionID uuid.UUID) (*entity.Receipt, error) {
	purchase, data, err := s.settlements.Receipt(ctx, purchaseID, transactionID)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		Header:        receiptHeader(store),
		Title:         "PAYMENT RECEIPT",
		Reference:     purchase.PurchaseNo,
		Date:          data.Transaction.CreatedAt.Format(receiptTimeLayout),
		PaymentMethod: data.Transaction.Method,
		Totals: []entity.ReceiptLine{
			{Label: "Order total", Amount: data.GrandTotal},
			{Label: "Paid before", Amount: data.PaidBefore},
			{Label: "THIS PAYMENT", Amount: data.Transaction.Amount},
		},
		Paid:   data.AmountPaid,
		Due:    data.AmountDue,
		Status: data.Status,
		Notes:  data.Transaction.Notes,
	}
	if purchase.Supplier != nil {
		receipt.Counterparty = purchase.Supplier.Name
	}

	return receipt, s.print(ctx, receipt)
}

func (s *PrinterService) print(ctx context.Context, receipt *entity.Receipt) error {
	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		s.log.Event(ctx, zerolog.WarnLevel).
			Err(err).
			Str("reference", receipt.Reference).
			Msg("receipt not printed")
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

func receiptHeader(store *entity.Store) entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: store.Name,
		Address:   store.Address,
		Phone:     store.Phone,
		TaxID:     store.TaxID,
	}
}

// FormatReceipt converts a Receipt into ESC/POS bytes for a paper width in characters.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("Tax ID: %s", r.Header.TaxID)
	}
	if r.Title != "" {
		doc.SetBold(true).Text(r.Title).SetBold(false)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Ref:", r.Reference).
		KeyValue("Date:", r.Date)

	if r.Operator != "" {
		doc.KeyValue("Operator:", r.Operator)
	}
	if r.Counterparty != "" {
		doc.KeyValue("Supplier:", r.Counterparty)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}

	doc.Separator('-')

	if len(r.Items) > 0 {
		one := decimal.NewFromInt(1)
		for _, item := range r.Items {
			doc.ItemLine(item.Quantity, item.Name, printer.Money(item.Total))
			if item.Quantity.GreaterThan(one) {
				doc.TextF("  @ %s each", printer.Money(item.UnitPrice))
			}
		}
		doc.Separator('-')
	}

	for _, line := range r.Totals {
		bold := strings.ToUpper(line.Label) == line.Label
		doc.SetBold(bold).
			KeyValue(line.Label+":", printer.Money(line.Amount)).
			SetBold(false)
	}

	doc.KeyValue("Paid:", printer.Money(r.Paid))
	if r.Due.IsPositive() {
		doc.KeyValue("Due:", printer.Money(r.Due))
	}
	if r.Status != "" {
		doc.KeyValue("Status:", strings.ToUpper(r.Status))
	}
	if r.Notes != "" {
		doc.Separator('-').Text(r.Notes)
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your business!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
