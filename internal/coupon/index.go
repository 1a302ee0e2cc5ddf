package coupon

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

const (
	minCapacity       = 1024
	falsePositiveRate = 0.001
)

// Index is a bloom filter over issued coupon codes. A negative answer only
// holds while Len matches the stored coupon count; other processes may
// issue codes this index has not seen.
type Index struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	count  int
	loaded bool
}

// NewIndex creates an empty index. Until Load is called MayExist answers
// true for every code.
func NewIndex() *Index {
	return &Index{filter: bloom.NewWithEstimates(minCapacity, falsePositiveRate)}
}

// Load rebuilds the filter from the full set of codes.
func (x *Index) Load(codes []string) {
	capacity := uint(len(codes) * 2)
	if capacity < minCapacity {
		capacity = minCapacity
	}
	f := bloom.NewWithEstimates(capacity, falsePositiveRate)
	for _, code := range codes {
		f.AddString(models.NormalizeCouponCode(code))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.filter = f
	x.count = len(codes)
	x.loaded = true
}

// Add records a newly issued code.
func (x *Index) Add(code string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.filter.AddString(models.NormalizeCouponCode(code))
	x.count++
}

// Len returns the number of codes loaded or added.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.count
}

// MayExist reports whether code could have been issued.
func (x *Index) MayExist(code string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.loaded {
		return true
	}
	return x.filter.TestString(models.NormalizeCouponCode(code))
}

// Stats returns index statistics for monitoring.
func (x *Index) Stats() map[string]interface{} {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return map[string]interface{}{
		"loaded":         x.loaded,
		"codes":          x.count,
		"filter_bits":    x.filter.Cap(),
		"hash_functions": x.filter.K(),
		"estimated_fp":   bloom.EstimateFalsePositiveRate(x.filter.Cap(), x.filter.K(), uint(x.count)),
	}
}
