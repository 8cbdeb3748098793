// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBudgetReserve(t *testing.T) {
	b := NewBudgetBytes(1000)

	if err := b.Reserve(600); err != nil {
		t.Fatalf("Reserve(600) error = %v", err)
	}
	if err := b.Reserve(600); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Reserve over budget error = %v, want ErrBudgetExceeded", err)
	}
	b.Release(600)
	if err := b.Reserve(1000); err != nil {
		t.Fatalf("Reserve(1000) after release error = %v", err)
	}

	s := b.Stats()
	if s.UsedBytes != 1000 || s.TextureCount != 1 || s.Rejected != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.Utilization != 1 {
		t.Errorf("Utilization = %g, want 1", s.Utilization)
	}
	if !strings.Contains(s.String(), "1 textures") {
		t.Errorf("String() = %q", s.String())
	}
}

func TestBudgetNilAndDefaults(t *testing.T) {
	var b *Budget
	if err := b.Reserve(1 << 40); err != nil {
		t.Errorf("nil budget Reserve error = %v", err)
	}
	b.Release(10)

	if got := NewBudget(0).Stats().TotalBytes; got != DefaultBudgetMB*1024*1024 {
		t.Errorf("default budget = %d", got)
	}
}

func TestTextureBytes(t *testing.T) {
	desc := DefaultTextureDescriptor(64, 32, gputypes.TextureFormatRGBA8Unorm)
	if got := TextureBytes(desc); got != 64*32*4 {
		t.Errorf("TextureBytes = %d", got)
	}
}
