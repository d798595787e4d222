package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DraftService keeps one draft purchase order per session and prices it on every change.
type DraftService struct {
	drafts    repository.DraftRepository
	pricing   *PricingService
	purchases *PurchaseService
	now       func() time.Time
}

// NewDraftService creates a new draft service
func NewDraftService(drafts repository.DraftRepository, pricingService *PricingService, purchases *PurchaseService) *DraftService {
	return &DraftService{
		drafts:    drafts,
		pricing:   pricingService,
		purchases: purchases,
		now:       time.Now,
	}
}

// DraftView is a draft together with its current totals.
type DraftView struct {
	*pricing.Draft
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// DraftDetailsInput updates the header fields of a draft. Nil leaves a field unchanged.
type DraftDetailsInput struct {
	SupplierID *uuid.UUID
	Notes      *string
}

// Start returns the session's draft, creating an empty one if needed.
func (s *DraftService) Start(ctx context.Context, sessionID string) (*DraftView, error) {
	draft, err := s.load(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

// Get returns the session's draft.
func (s *DraftService) Get(ctx context.Context, sessionID string) (*DraftView, error) {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

// AddItem adds a line, starting a draft if the session has none.
func (s *DraftService) AddItem(ctx context.Context, sessionID string, input LineItemInput) (*DraftView, error) {
	draft, err := s.load(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	item, err := s.pricing.BuildLineItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if _, err := draft.Items.Add(item); err != nil {
		return nil, err
	}
	return s.save(ctx, draft)
}

// UpdateQuantity changes the quantity of one line.
func (s *DraftService) UpdateQuantity(ctx context.Context, sessionID string, itemID uuid.UUID, quantity decimal.Decimal) (*DraftView, error) {
	return s.mutate(ctx, sessionID, func(d *pricing.Draft) error {
		_, err := d.Items.UpdateQuantity(itemID, quantity)
		return err
	})
}

// UpdateUnitPrice changes the unit price of one line.
func (s *DraftService) UpdateUnitPrice(ctx context.Context, sessionID string, itemID uuid.UUID, price decimal.Decimal) (*DraftView, error) {
	return s.mutate(ctx, sessionID, func(d *pricing.Draft) error {
		_, err := d.Items.UpdateUnitPrice(itemID, price)
		return err
	})
}

// RemoveItem drops one line.
func (s *DraftService) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (*DraftView, error) {
	return s.mutate(ctx, sessionID, func(d *pricing.Draft) error {
		return d.Items.Remove(itemID)
	})
}

// ClearItems drops every line but keeps the discount and header.
func (s *DraftService) ClearItems(ctx context.Context, sessionID string) (*DraftView, error) {
	return s.mutate(ctx, sessionID, func(d *pricing.Draft) error {
		d.Items.Clear()
		return nil
	})
}

// SetDiscount replaces the discount stack and the attached customer.
func (s *DraftService) SetDiscount(ctx context.Context, sessionID string, input DiscountInput) (*DraftView, error) {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	dc, customer, err := s.pricing.BuildDiscount(ctx, input)
	if err != nil {
		return nil, err
	}
	draft.Discount = dc
	draft.CustomerID = customerID(customer)
	return s.save(ctx, draft)
}

// SetDetails updates supplier and notes.
func (s *DraftService) SetDetails(ctx context.Context, sessionID string, input DraftDetailsInput) (*DraftView, error) {
	return s.mutate(ctx, sessionID, func(d *pricing.Draft) error {
		if input.SupplierID != nil {
			if *input.SupplierID == uuid.Nil {
				d.SupplierID = nil
			} else {
				id := *input.SupplierID
				d.SupplierID = &id
			}
		}
		if input.Notes != nil {
			d.Notes = *input.Notes
		}
		return nil
	})
}

// Cancel throws the session's draft away.
func (s *DraftService) Cancel(ctx context.Context, sessionID string) error {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return err
	}
	return s.drafts.Delete(ctx, draft.StoreID, sessionID)
}

// Submit stores the draft as a purchase order and discards it.
func (s *DraftService) Submit(ctx context.Context, sessionID string, input *SubmitInput) (*entity.Purchase, error) {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	if draft.Items.Len() == 0 {
		return nil, apperror.NewFieldValidationError("items", "draft has no items")
	}
	purchase, err := s.purchases.CreateFromDraft(ctx, draft, input)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, draft.StoreID, sessionID); err != nil {
		return nil, err
	}
	return purchase, nil
}

// Snapshot builds the export view of the session's draft.
func (s *DraftService) Snapshot(ctx context.Context, sessionID string) (*pricing.Snapshot, error) {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	return s.purchases.DraftSnapshot(ctx, draft)
}

func (s *DraftService) mutate(ctx context.Context, sessionID string, fn func(*pricing.Draft) error) (*DraftView, error) {
	draft, err := s.load(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	return s.save(ctx, draft)
}

func (s *DraftService) load(ctx context.Context, sessionID string, create bool) (*pricing.Draft, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}
	if sessionID == "" {
		return nil, apperror.NewBadRequestError("Session required")
	}
	draft, err := s.drafts.Get(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}
	if !create {
		return nil, apperror.NewNotFoundError("Draft")
	}
	draft = pricing.NewDraft(sessionID, storeID, s.now().UTC())
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) save(ctx context.Context, draft *pricing.Draft) (*DraftView, error) {
	draft.Touch(s.now().UTC())
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

func (s *DraftService) view(draft *pricing.Draft) *DraftView {
	return &DraftView{Draft: draft, Breakdown: draft.Quote(s.pricing.Resolver()).Rounded()}
}

func customerID(c *entity.Customer) *uuid.UUID {
	if c == nil {
		return nil
	}
	id := c.ID
	return &id
}
