package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/sangkips/stockroom-api/pkg/utils"
	"github.com/shopspring/decimal"
)

var hundredPercent = decimal.NewFromInt(100)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name        string
	Code        string
	Unit        string
	Quantity    decimal.Decimal
	BuyingPrice decimal.Decimal
	TaxRate     decimal.Decimal
	TaxType     enum.TaxType
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	var fieldErrors []apperror.FieldError
	if input.Quantity.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "quantity cannot be negative"})
	}
	if input.BuyingPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "buying_price", Message: "buying price cannot be negative"})
	}
	if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(hundredPercent) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_rate", Message: "tax rate must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	// Auto-generate code if not provided
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	product := &entity.Product{
		StoreID:     storeID,
		Name:        input.Name,
		Code:        code,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		BuyingPrice: input.BuyingPrice.Round(2),
		TaxRate:     input.TaxRate,
		TaxType:     input.TaxType,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products of the current store
func (s *ProductService) ListProducts(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Code        *string
	Unit        *string
	BuyingPrice *decimal.Decimal
	TaxRate     *decimal.Decimal
	TaxType     *enum.TaxType
}

// UpdateProduct updates a product. Stock moves only through receipts, so
// quantity is not editable here.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	var fieldErrors []apperror.FieldError
	if input.BuyingPrice != nil && input.BuyingPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "buying_price", Message: "buying price cannot be negative"})
	}
	if input.TaxRate != nil && (input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(hundredPercent)) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_rate", Message: "tax rate must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	// Check if new code is unique
	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code != "" && code != product.Code {
			existing, err := s.productRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, apperror.NewConflictError("Product code already exists")
			}
			product.Code = code
		}
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.BuyingPrice != nil {
		product.BuyingPrice = input.BuyingPrice.Round(2)
	}
	if input.TaxRate != nil {
		product.TaxRate = *input.TaxRate
	}
	if input.TaxType != nil {
		product.TaxType = *input.TaxType
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}
