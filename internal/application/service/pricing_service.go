package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// PricingService turns request lines and discount inputs into priced
// line items and a breakdown. It never persists anything.
type PricingService struct {
	resolver     *pricing.Resolver
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewPricingService creates a new pricing service
func NewPricingService(
	resolver *pricing.Resolver,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *PricingService {
	return &PricingService{
		resolver:     resolver,
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// LineItemInput describes one line as the operator entered it.
// Existing lines default their name, unit, price and tax to the catalog product.
type LineItemInput struct {
	Kind        enum.LineItemKind
	ProductID   *uuid.UUID
	Name        string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
	TaxIncluded *bool
}

// DiscountInput is the discount stack as the operator chose it.
type DiscountInput struct {
	ManualPercent    decimal.Decimal
	CustomerID       *uuid.UUID
	RedeemPoints     bool
	PointsRequested  int64
	RedeemBalance    bool
	BalanceRequested decimal.Decimal
}

// Quote is a priced order that has not been stored.
type Quote struct {
	Items     []pricing.LineItem      `json:"items"`
	Discount  pricing.DiscountContext `json:"discount"`
	Breakdown pricing.Breakdown       `json:"breakdown"`
	Customer  *entity.Customer        `json:"-"`
}

// Resolver exposes the configured resolver.
func (s *PricingService) Resolver() *pricing.Resolver {
	return s.resolver
}

// BuildLineItem resolves a single input line against the catalog.
func (s *PricingService) BuildLineItem(ctx context.Context, input LineItemInput) (pricing.LineItem, error) {
	items, err := s.BuildLineItems(ctx, []LineItemInput{input})
	if err != nil {
		return pricing.LineItem{}, err
	}
	return items[0], nil
}

// BuildLineItems resolves input lines, fetching catalog products in one query.
func (s *PricingService) BuildLineItems(ctx context.Context, inputs []LineItemInput) ([]pricing.LineItem, error) {
	var productIDs []uuid.UUID
	for _, in := range inputs {
		if in.Kind == enum.LineItemKindExisting && in.ProductID != nil {
			productIDs = append(productIDs, *in.ProductID)
		}
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(productIDs))
	if len(productIDs) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		for i := range products {
			productMap[products[i].ID] = &products[i]
		}
	}

	items := make([]pricing.LineItem, 0, len(inputs))
	for i, in := range inputs {
		item := pricing.LineItem{
			ProductID: in.ProductID,
			Kind:      in.Kind,
			Name:      in.Name,
			Unit:      in.Unit,
			Quantity:  in.Quantity,
			TaxRate:   in.TaxRate,
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if in.TaxIncluded != nil {
			item.TaxIncluded = *in.TaxIncluded
		}

		if in.Kind == enum.LineItemKindExisting && in.ProductID != nil {
			product, ok := productMap[*in.ProductID]
			if !ok {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", *in.ProductID))
			}
			applyCatalog(&item, product, in)
		}

		if err := item.Validate(); err != nil {
			return nil, prefixFieldErrors(err, fmt.Sprintf("items[%d]", i))
		}
		items = append(items, item)
	}
	return items, nil
}

func applyCatalog(item *pricing.LineItem, product *entity.Product, in LineItemInput) {
	if item.Name == "" {
		item.Name = product.Name
	}
	if item.Unit == "" {
		item.Unit = product.Unit
	}
	if in.UnitPrice == nil {
		item.UnitPrice = product.BuyingPrice
	}
	if in.TaxRate == nil {
		rate := product.TaxRate
		item.TaxRate = &rate
	}
	if in.TaxIncluded == nil {
		item.TaxIncluded = product.TaxType.Included()
	}
}

// BuildDiscount loads the customer, if any, and validates the discount stack.
// Redemption requests are kept as asked; Quote clamps them to the customer's credit.
func (s *PricingService) BuildDiscount(ctx context.Context, input DiscountInput) (pricing.DiscountContext, *entity.Customer, error) {
	dc := pricing.DiscountContext{
		ManualPercent:    input.ManualPercent,
		RedeemPoints:     input.RedeemPoints,
		PointsRequested:  input.PointsRequested,
		RedeemBalance:    input.RedeemBalance,
		BalanceRequested: input.BalanceRequested,
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		found, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return pricing.DiscountContext{}, nil, err
		}
		if found == nil {
			return pricing.DiscountContext{}, nil, apperror.NewNotFoundError("Customer")
		}
		customer = found
		dc.Customer = CustomerCredit(found)
	}

	if err := dc.Validate(); err != nil {
		return pricing.DiscountContext{}, nil, err
	}
	return dc, customer, nil
}

// CustomerCredit is the slice of a customer the discount stack needs.
func CustomerCredit(c *entity.Customer) *pricing.CustomerCredit {
	return &pricing.CustomerCredit{
		Tier:             c.MembershipTier,
		AvailablePoints:  c.LoyaltyPoints,
		AvailableBalance: c.AccountBalance,
	}
}

// Quote prices inputs without storing anything.
func (s *PricingService) Quote(ctx context.Context, items []LineItemInput, discount DiscountInput) (*Quote, error) {
	lineItems, err := s.BuildLineItems(ctx, items)
	if err != nil {
		return nil, err
	}
	dc, customer, err := s.BuildDiscount(ctx, discount)
	if err != nil {
		return nil, err
	}
	return s.Price(lineItems, dc, customer), nil
}

// Price resolves already built line items and discount context.
func (s *PricingService) Price(items []pricing.LineItem, dc pricing.DiscountContext, customer *entity.Customer) *Quote {
	clamped := dc.Clamp()
	return &Quote{
		Items:     items,
		Discount:  clamped,
		Breakdown: s.resolver.ResolveTotals(items, clamped),
		Customer:  customer,
	}
}

// prefixFieldErrors scopes the field names of a validation error to a list position.
func prefixFieldErrors(err error, prefix string) error {
	appErr := apperror.GetAppError(err)
	if len(appErr.Errors) == 0 {
		return err
	}
	fields := make([]apperror.FieldError, len(appErr.Errors))
	for i, fe := range appErr.Errors {
		fields[i] = apperror.FieldError{Field: prefix + "." + fe.Field, Message: fe.Message}
	}
	return apperror.NewValidationError(fields)
}
