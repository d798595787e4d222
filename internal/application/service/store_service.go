package service

import (
	"context"

	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
)

// StoreService handles store lookups and per-store settings
type StoreService struct {
	storeRepo      repository.StoreRepository
	defaultMethods []string
}

// NewStoreService creates a new store service. defaultMethods apply to
// stores that have not configured their own payment methods.
func NewStoreService(storeRepo repository.StoreRepository, defaultMethods []string) *StoreService {
	return &StoreService{storeRepo: storeRepo, defaultMethods: defaultMethods}
}

// CurrentStore returns the store selected on the request context.
func (s *StoreService) CurrentStore(ctx context.Context) (*entity.Store, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	return store, nil
}

// PaymentMethods returns the methods the current store accepts.
func (s *StoreService) PaymentMethods(ctx context.Context) (settlement.PaymentMethods, error) {
	store, err := s.CurrentStore(ctx)
	if err != nil {
		return settlement.PaymentMethods{}, err
	}
	return settlement.NewPaymentMethods(store.ActivePaymentMethods(s.defaultMethods)...), nil
}

// UpdatePaymentMethods replaces the current store's methods. An empty list
// falls back to the service defaults.
func (s *StoreService) UpdatePaymentMethods(ctx context.Context, methods []string) (*entity.Store, error) {
	store, err := s.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}
	store.Settings.PaymentMethods = settlement.NewPaymentMethods(methods...).Names()
	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}
