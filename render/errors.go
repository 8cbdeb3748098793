// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Device errors. Implementations wrap these with details.
var (
	// ErrProgram is returned when a program fails to compile or link.
	ErrProgram = errors.New("render: program compilation failed")

	// ErrAllocation is returned when a texture or framebuffer cannot be created.
	ErrAllocation = errors.New("render: allocation failed")

	// ErrVertexBuffer is returned when the streaming vertex buffer cannot be mapped.
	ErrVertexBuffer = errors.New("render: vertex buffer unavailable")

	// ErrUnsupportedFormat is returned for texture formats a device cannot render to.
	ErrUnsupportedFormat = errors.New("render: unsupported texture format")

	// ErrInvalidTarget is returned when a draw or blit references a target the
	// device cannot access.
	ErrInvalidTarget = errors.New("render: invalid render target")

	// ErrBudgetExceeded is returned when an allocation would exceed the
	// device memory budget.
	ErrBudgetExceeded = errors.New("render: memory budget exceeded")
)
