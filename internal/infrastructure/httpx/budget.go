package httpx

import (
	"sync/atomic"

	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// Budget caps the number of outbound requests one search query may spend
// against a single supplier.  Cache hits do not consume budget.  A nil
// Budget never limits.
type Budget struct {
	limit int64
	used  atomic.Int64
}

// NewBudget builds a budget allowing up to limit requests.  A non-positive
// limit means unlimited.
func NewBudget(limit int) *Budget {
	return &Budget{limit: int64(limit)}
}

// Acquire consumes one request slot, failing with CodeRequestBudget once
// the ceiling is reached.
func (b *Budget) Acquire() error {
	if b == nil || b.limit <= 0 {
		return nil
	}
	if b.used.Add(1) > b.limit {
		b.used.Add(-1)
		return errors.New(errors.CodeRequestBudget, "request budget exhausted")
	}
	return nil
}

// Used reports how many slots have been consumed.
func (b *Budget) Used() int {
	if b == nil {
		return 0
	}
	return int(b.used.Load())
}

// Remaining reports how many slots are left, or -1 for unlimited.
func (b *Budget) Remaining() int {
	if b == nil || b.limit <= 0 {
		return -1
	}
	rem := b.limit - b.used.Load()
	if rem < 0 {
		rem = 0
	}
	return int(rem)
}
