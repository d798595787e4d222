package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name           string
	Email          *string
	Phone          *string
	Address        *string
	MembershipTier enum.MembershipTier
	LoyaltyPoints  int64
	AccountBalance decimal.Decimal
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	tier := input.MembershipTier
	if tier == "" {
		tier = enum.MembershipTierNormal
	}
	if err := validateCredit(tier, input.LoyaltyPoints, input.AccountBalance); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		StoreID:        storeID,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		MembershipTier: tier,
		LoyaltyPoints:  input.LoyaltyPoints,
		AccountBalance: input.AccountBalance.Round(2),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers of the current store
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID             uuid.UUID
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	MembershipTier *enum.MembershipTier
	LoyaltyPoints  *int64
	AccountBalance *decimal.Decimal
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.MembershipTier != nil {
		customer.MembershipTier = *input.MembershipTier
	}
	if input.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *input.LoyaltyPoints
	}
	if input.AccountBalance != nil {
		customer.AccountBalance = input.AccountBalance.Round(2)
	}
	if err := validateCredit(customer.MembershipTier, customer.LoyaltyPoints, customer.AccountBalance); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func validateCredit(tier enum.MembershipTier, points int64, balance decimal.Decimal) error {
	var fieldErrors []apperror.FieldError
	if !tier.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "membership_tier", Message: "unknown membership tier"})
	}
	if points < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "loyalty_points", Message: "loyalty points cannot be negative"})
	}
	if balance.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "account_balance", Message: "account balance cannot be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// SupplierService handles supplier-related operations
type SupplierService struct {
	supplierRepo repository.SupplierRepository
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// CreateSupplierInput represents the create supplier input
type CreateSupplierInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
	TaxID   *string
}

// CreateSupplier creates a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, input *CreateSupplierInput) (*entity.Supplier, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	supplier := &entity.Supplier{
		StoreID: storeID,
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		TaxID:   input.TaxID,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}
	return supplier, nil
}

// ListSuppliers lists suppliers of the current store
func (s *SupplierService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(suppliers, pag), nil
}

// UpdateSupplierInput represents the update supplier input
type UpdateSupplierInput struct {
	ID      uuid.UUID
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	TaxID   *string
}

// UpdateSupplier updates a supplier
func (s *SupplierService) UpdateSupplier(ctx context.Context, input *UpdateSupplierInput) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}

	if input.Name != nil {
		supplier.Name = *input.Name
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if input.TaxID != nil {
		supplier.TaxID = input.TaxID
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}
