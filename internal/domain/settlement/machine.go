package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Action names a settlement transition.
type Action string

const (
	ActionPartialPayment Action = "partial_payment"
	ActionClearDue       Action = "clear_due"
	ActionDelete         Action = "delete"
)

// Gateway is the persistence collaborator that owns the authoritative records.
type Gateway interface {
	// ApplyPayment persists tx and returns the record as it stands afterwards.
	ApplyPayment(ctx context.Context, tx Transaction) (Record, error)
	DeleteRecord(ctx context.Context, orderID uuid.UUID) error
}

// Guard keeps a session from running two actions on one record at once.
type Guard interface {
	// Acquire takes key and returns a token naming this holder.
	// ok is false when key is already held.
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	// Release frees key only while token still holds it, so a holder whose
	// lock expired cannot free the lock of the next holder.
	Release(ctx context.Context, key, token string) error
}

// Event is the classified outcome of one settlement action.
type Event struct {
	Action    Action
	OrderID   uuid.UUID
	SessionID string
	Amount    decimal.Decimal
	Method    string
	Outcome   apperror.Outcome
	Err       error

	// ReleaseErr is set when the in-flight lock could not be freed; the
	// record stays blocked for this session until the lock expires.
	ReleaseErr error
}

// Notifier receives one Event per action. It must not block.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event)

func (f NotifierFunc) Notify(ctx context.Context, event Event) { f(ctx, event) }

// Machine runs settlement actions against a projection: check locally,
// send to the gateway, then overwrite the projection with the acknowledged record.
type Machine struct {
	settler  *Settler
	gateway  Gateway
	guard    Guard
	notifier Notifier
}

// NewMachine wires the settlement rules to persistence. guard and notifier may be nil.
func NewMachine(settler *Settler, gateway Gateway, guard Guard, notifier Notifier) *Machine {
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Event) {})
	}
	return &Machine{settler: settler, gateway: gateway, guard: guard, notifier: notifier}
}

// Settler exposes the rules the machine enforces.
func (m *Machine) Settler() *Settler {
	return m.settler
}

// ApplyPartialPayment pays amount against the projected record.
func (m *Machine) ApplyPartialPayment(ctx context.Context, sessionID string, p *Projection, amount decimal.Decimal, method, notes string) (Transaction, error) {
	return m.pay(ctx, ActionPartialPayment, sessionID, p, func(rec Record) (Record, Transaction, error) {
		return m.settler.ApplyPartialPayment(rec, amount, method, notes)
	})
}

// ClearFullDue pays the whole amount due at call time.
func (m *Machine) ClearFullDue(ctx context.Context, sessionID string, p *Projection, method, notes string) (Transaction, error) {
	return m.pay(ctx, ActionClearDue, sessionID, p, func(rec Record) (Record, Transaction, error) {
		return m.settler.ClearFullDue(rec, method, notes)
	})
}

// Delete removes the record if it has produced no payments or receipts yet.
func (m *Machine) Delete(ctx context.Context, sessionID string, p *Projection) (err error) {
	rec := p.Record()
	event := Event{Action: ActionDelete, OrderID: rec.OrderID, SessionID: sessionID}
	defer func() { m.emit(ctx, event, err) }()

	if p.Deleted() {
		return apperror.NewNotFoundError("Purchase")
	}
	release, err := m.acquire(ctx, sessionID, rec.OrderID)
	if err != nil {
		return err
	}
	defer func() { event.ReleaseErr = release() }()

	if err = m.settler.CheckDelete(rec); err != nil {
		return err
	}
	if gwErr := m.gateway.DeleteRecord(ctx, rec.OrderID); gwErr != nil {
		return apperror.NewRemoteError(gwErr)
	}
	p.markDeleted()
	return nil
}

func (m *Machine) pay(ctx context.Context, action Action, sessionID string, p *Projection, transition func(Record) (Record, Transaction, error)) (tx Transaction, err error) {
	rec := p.Record()
	event := Event{Action: action, OrderID: rec.OrderID, SessionID: sessionID}
	defer func() {
		event.Amount, event.Method = tx.Amount, tx.Method
		m.emit(ctx, event, err)
	}()

	if p.Deleted() {
		return Transaction{}, apperror.NewNotFoundError("Purchase")
	}
	release, err := m.acquire(ctx, sessionID, rec.OrderID)
	if err != nil {
		return Transaction{}, err
	}
	defer func() { event.ReleaseErr = release() }()

	_, pending, err := transition(rec)
	if err != nil {
		return Transaction{}, err
	}

	ack, gwErr := m.gateway.ApplyPayment(ctx, pending)
	if gwErr != nil {
		return Transaction{}, apperror.NewRemoteError(gwErr)
	}
	if vErr := ack.Validate(); vErr != nil {
		return Transaction{}, apperror.NewRemoteError(fmt.Errorf("acknowledged record rejected: %w", vErr))
	}
	p.reconcile(ack, &pending)
	return pending, nil
}

func (m *Machine) acquire(ctx context.Context, sessionID string, orderID uuid.UUID) (func() error, error) {
	if m.guard == nil {
		return func() error { return nil }, nil
	}
	key := GuardKey(sessionID, orderID)
	token, ok, err := m.guard.Acquire(ctx, key)
	if err != nil {
		return nil, apperror.GetAppError(err)
	}
	if !ok {
		return nil, apperror.ErrInFlight
	}
	return func() error {
		if err := m.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}, nil
}

func (m *Machine) emit(ctx context.Context, event Event, err error) {
	event.Outcome = apperror.Classify(err)
	event.Err = err
	m.notifier.Notify(ctx, event)
}

// GuardKey is the in-flight lock key of one session acting on one order.
func GuardKey(sessionID string, orderID uuid.UUID) string {
	return "settlement:" + sessionID + ":" + orderID.String()
}
