// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"
)

// Default memory limits.
const (
	// DefaultBudgetMB is the default texture memory budget (256 MB).
	DefaultBudgetMB = 256

	// MinBudgetMB is the minimum allowed budget (1 MB).
	MinBudgetMB = 1
)

// BudgetStats contains texture memory usage statistics.
type BudgetStats struct {
	// TotalBytes is the total memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently reserved memory in bytes.
	UsedBytes uint64

	// TextureCount is the number of live textures.
	TextureCount int

	// Rejected is the number of allocations refused for lack of budget.
	Rejected uint64

	// Utilization is the fraction of budget used (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s BudgetStats) String() string {
	return fmt.Sprintf("Budget[%.1f%% used, %d/%d KB, %d textures, %d rejected]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.TextureCount,
		s.Rejected)
}

// Budget tracks texture memory reserved by a device and refuses
// allocations that would exceed its limit.
//
// Render chains cannot be evicted behind the renderer's back, so a full
// budget fails the allocation instead; the blur of that window is skipped for
// the frame and retried on the next one.
//
// Budget is safe for concurrent use. The zero value is unlimited.
type Budget struct {
	mu sync.Mutex

	budgetBytes uint64 // 0 means unlimited
	usedBytes   uint64
	count       int
	rejected    uint64
}

// NewBudget creates a budget of maxMB megabytes. maxMB below MinBudgetMB
// selects DefaultBudgetMB.
func NewBudget(maxMB int) *Budget {
	if maxMB < MinBudgetMB {
		maxMB = DefaultBudgetMB
	}
	//nolint:gosec // G115: maxMB is bounded by MinBudgetMB minimum
	return &Budget{budgetBytes: uint64(maxMB) * 1024 * 1024}
}

// NewBudgetBytes creates a budget with an exact byte limit.
func NewBudgetBytes(limit uint64) *Budget {
	return &Budget{budgetBytes: limit}
}

// Reserve accounts for a new texture of n bytes. Errors wrap
// ErrBudgetExceeded.
func (b *Budget) Reserve(n uint64) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.budgetBytes != 0 && b.usedBytes+n > b.budgetBytes {
		b.rejected++
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrBudgetExceeded, n, b.usedBytes, b.budgetBytes)
	}
	b.usedBytes += n
	b.count++
	return nil
}

// Release returns n bytes of a destroyed texture to the budget.
func (b *Budget) Release(n uint64) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.usedBytes {
		n = b.usedBytes
	}
	b.usedBytes -= n
	if b.count > 0 {
		b.count--
	}
}

// Stats returns a snapshot of the budget.
func (b *Budget) Stats() BudgetStats {
	if b == nil {
		return BudgetStats{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	s := BudgetStats{
		TotalBytes:   b.budgetBytes,
		UsedBytes:    b.usedBytes,
		TextureCount: b.count,
		Rejected:     b.rejected,
	}
	if b.budgetBytes > 0 {
		s.Utilization = float64(b.usedBytes) / float64(b.budgetBytes)
	}
	return s
}

// TextureBytes returns the storage size of a texture described by desc.
func TextureBytes(desc TextureDescriptor) uint64 {
	//nolint:gosec // G115: BytesPerPixel is small and non-negative
	return uint64(desc.Width) * uint64(desc.Height) * uint64(BytesPerPixel(desc.Format))
}
