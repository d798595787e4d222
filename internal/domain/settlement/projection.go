package settlement

import "sync"

// Projection is the locally held copy of an authoritative record between
// round trips. It only changes when the persistence side acknowledges an
// action, and then it is overwritten with what came back.
type Projection struct {
	mu           sync.RWMutex
	record       Record
	transactions []Transaction
	deleted      bool
}

// NewProjection seeds a projection from an authoritative record and its history.
func NewProjection(rec Record, history ...Transaction) *Projection {
	p := &Projection{record: rec}
	p.transactions = append(p.transactions, history...)
	return p
}

// Record returns a copy of the current record.
func (p *Projection) Record() Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.record
}

// Transactions returns the payments applied so far, oldest first.
func (p *Projection) Transactions() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Transaction, len(p.transactions))
	copy(out, p.transactions)
	return out
}

// Deleted reports whether a delete was acknowledged.
func (p *Projection) Deleted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deleted
}

func (p *Projection) reconcile(ack Record, tx *Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record = ack
	if tx != nil {
		p.transactions = append(p.transactions, *tx)
	}
}

func (p *Projection) markDeleted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = true
}
