package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	domainRepo "github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var purchaseSortColumns = map[string]string{
	"created_at":  "created_at",
	"date":        "date",
	"purchase_no": "purchase_no",
	"grand_total": "grand_total",
	"amount_due":  "amount_due",
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase, redemption *domainRepo.Redemption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !redemption.IsZero() {
			res := tx.Model(&entity.Customer{}).
				Scopes(StoreScope(ctx)).
				Where("id = ? AND loyalty_points >= ? AND account_balance >= ?",
					redemption.CustomerID, redemption.Points, redemption.Balance).
				Updates(map[string]interface{}{
					"loyalty_points":  gorm.Expr("loyalty_points - ?", redemption.Points),
					"account_balance": gorm.Expr("account_balance - ?", redemption.Balance),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperror.NewFieldValidationError("customer", "customer credit is insufficient for the requested redemption")
			}
		}
		for i := range purchase.Transactions {
			purchase.Transactions[i].Sequence = i + 1
		}
		return tx.Create(purchase).Error
	})
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Preload("Supplier").
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order(transactionOrder)
		}).
		First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) List(ctx context.Context, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{}).
		Scopes(StoreScope(ctx), searchScope(params.Search, "purchase_no"))

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}
	if params.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *params.FulfillmentStatus)
	}
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.StartDate != nil {
		query = query.Where("date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("date <= ?", *params.EndDate)
	}
	if params.DueOnly {
		query = query.Where("amount_due > 0 AND fulfillment_status <> ?", enum.FulfillmentStatusCancelled)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	if col, ok := purchaseSortColumns[params.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	err := query.Scopes(paginate(params.Pagination)).
		Preload("Supplier").
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&purchases).Error

	return purchases, total, err
}

// transactionOrder replays payments in the order they were applied.
const transactionOrder = "sequence ASC, created_at ASC"

func (r *purchaseRepository) ListTransactions(ctx context.Context, purchaseID uuid.UUID) ([]entity.PaymentTransaction, error) {
	var transactions []entity.PaymentTransaction
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Where("purchase_id = ?", purchaseID).
		Order(transactionOrder).
		Find(&transactions).Error
	return transactions, err
}

func (r *purchaseRepository) ApplyPayment(ctx context.Context, payment *entity.PaymentTransaction) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lock(ctx, tx, payment.PurchaseID, &purchase); err != nil {
			return err
		}

		if purchase.FulfillmentStatus == enum.FulfillmentStatusCancelled {
			return apperror.NewPolicyViolation("cancelled purchases cannot take payments")
		}
		if !payment.Amount.IsPositive() {
			return apperror.NewFieldValidationError("amount", "amount must be greater than zero")
		}
		if payment.Amount.GreaterThan(purchase.AmountDue) {
			return apperror.NewFieldValidationError("amount",
				"amount "+payment.Amount.StringFixed(2)+" exceeds amount due "+purchase.AmountDue.StringFixed(2))
		}

		paid := purchase.AmountPaid.Add(payment.Amount)
		due := purchase.AmountDue.Sub(payment.Amount)
		if !due.IsPositive() {
			due = decimal.Zero
			paid = purchase.GrandTotal
		}
		status := settlement.DerivePaymentStatus(paid, due)

		var last int
		if err := tx.Model(&entity.PaymentTransaction{}).
			Where("purchase_id = ?", purchase.ID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		payment.StoreID = purchase.StoreID
		payment.Sequence = last + 1
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&purchase).Updates(map[string]interface{}{
			"amount_paid":    paid,
			"amount_due":     due,
			"payment_status": status,
		}).Error; err != nil {
			return err
		}
		purchase.AmountPaid, purchase.AmountDue, purchase.PaymentStatus = paid, due, status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase entity.Purchase
		if err := r.lock(ctx, tx, id, &purchase); err != nil {
			return err
		}
		if purchase.PaymentStatus != enum.PaymentStatusPending || purchase.FulfillmentStatus != enum.FulfillmentStatusOrdered {
			return apperror.NewPolicyViolation(
				"purchase with payment status " + purchase.PaymentStatus.String() +
					" and fulfillment status " + purchase.FulfillmentStatus.String() + " cannot be deleted")
		}
		var payments int64
		if err := tx.Model(&entity.PaymentTransaction{}).Where("purchase_id = ?", id).Count(&payments).Error; err != nil {
			return err
		}
		if payments > 0 {
			return apperror.NewPolicyViolation("purchase with recorded payments cannot be deleted")
		}
		if err := refundRedemption(tx, &purchase); err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&entity.PurchaseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&purchase).Error
	})
}

func (r *purchaseRepository) Receive(ctx context.Context, id uuid.UUID, quantities map[uuid.UUID]decimal.Decimal) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lock(ctx, tx, id, &purchase); err != nil {
			return err
		}
		if purchase.FulfillmentStatus.IsTerminal() {
			return apperror.NewPolicyViolation("purchase is already " + purchase.FulfillmentStatus.String())
		}

		var items []entity.PurchaseItem
		if err := tx.Where("purchase_id = ?", id).Order("created_at ASC").Find(&items).Error; err != nil {
			return err
		}
		byID := make(map[uuid.UUID]int, len(items))
		for i := range items {
			byID[items[i].ID] = i
		}
		for itemID, qty := range quantities {
			i, ok := byID[itemID]
			if !ok {
				return apperror.NewFieldValidationError("lines", "item "+itemID.String()+" is not part of this purchase")
			}
			if !qty.IsPositive() {
				return apperror.NewFieldValidationError("lines", "received quantity must be greater than zero")
			}
			if qty.GreaterThan(items[i].Outstanding()) {
				return apperror.NewFieldValidationError("lines",
					"received quantity for "+items[i].Name+" exceeds outstanding "+items[i].Outstanding().String())
			}
		}

		complete := true
		stock := make(map[uuid.UUID]decimal.Decimal)
		for i := range items {
			item := &items[i]
			if qty, ok := quantities[item.ID]; ok {
				item.ReceivedQuantity = item.ReceivedQuantity.Add(qty)
				if err := tx.Model(item).UpdateColumn("received_quantity", item.ReceivedQuantity).Error; err != nil {
					return err
				}
				if item.ProductID != nil {
					stock[*item.ProductID] = stock[*item.ProductID].Add(qty)
				}
			}
			if item.Outstanding().IsPositive() {
				complete = false
			}
		}
		if err := incrementStock(tx, stock); err != nil {
			return err
		}

		status := enum.FulfillmentStatusPartiallyReceived
		if complete {
			status = enum.FulfillmentStatusReceived
		}
		if err := tx.Model(&purchase).Update("fulfillment_status", status).Error; err != nil {
			return err
		}
		purchase.FulfillmentStatus = status
		purchase.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) Cancel(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lock(ctx, tx, id, &purchase); err != nil {
			return err
		}
		if purchase.FulfillmentStatus != enum.FulfillmentStatusOrdered {
			return apperror.NewPolicyViolation("purchase is " + purchase.FulfillmentStatus.String() + " and cannot be cancelled")
		}
		if purchase.AmountPaid.IsPositive() {
			return apperror.NewPolicyViolation("purchase with recorded payments cannot be cancelled")
		}
		if err := refundRedemption(tx, &purchase); err != nil {
			return err
		}
		if err := tx.Model(&purchase).Update("fulfillment_status", enum.FulfillmentStatusCancelled).Error; err != nil {
			return err
		}
		purchase.FulfillmentStatus = enum.FulfillmentStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// lock loads the purchase with a row lock, scoped to the caller's store.
func (r *purchaseRepository) lock(ctx context.Context, tx *gorm.DB, id uuid.UUID, purchase *entity.Purchase) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(StoreScope(ctx)).
		First(purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Purchase")
	}
	return err
}

// refundRedemption returns redeemed points and balance to the customer.
func refundRedemption(tx *gorm.DB, purchase *entity.Purchase) error {
	if purchase.CustomerID == nil || (purchase.PointsRedeemed == 0 && purchase.BalanceDiscountAmount.IsZero()) {
		return nil
	}
	return tx.Model(&entity.Customer{}).
		Where("id = ?", *purchase.CustomerID).
		Updates(map[string]interface{}{
			"loyalty_points":  gorm.Expr("loyalty_points + ?", purchase.PointsRedeemed),
			"account_balance": gorm.Expr("account_balance + ?", purchase.BalanceDiscountAmount),
		}).Error
}
