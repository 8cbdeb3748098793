// Package frost is a background blur and rounded-corner stage for window
// compositors.
//
// # Overview
//
// The host compositor drives two effects through per-frame hooks:
//
//   - Effect blurs what lies behind translucent windows with a dual-Kawase
//     blur and keeps the damage bookkeeping that decides which parts of the
//     screen must be repainted for the blur to stay correct.
//   - Corners rounds window corners and draws optional outlines.
//
// Both share one Config and carve the same corner masks, so a rounded
// window never shows blur past its corners.
//
// # Frame Sequence
//
// Every frame the host calls, in order:
//
//	effect.PrePaintScreen(&screenData)
//	for _, w := range bottomToTop {
//	    effect.PrePaintWindow(w, &windowData)
//	}
//	for _, w := range paintOrder {
//	    effect.DrawWindow(target, viewport, w, mask, clip, &paintData)
//	}
//
// PrePaintWindow must see windows strictly bottom to top: it folds each
// window into the damage state left by the windows below it.
//
// # Window Model
//
// frost never inspects concrete window types. Everything it needs is asked
// through the Window and Host interfaces, so any compositor can implement
// them.
//
// # Rendering
//
// GPU work goes through render.Device. backend/wgpu runs on gogpu/wgpu,
// backend/software is a CPU reference used by tests and cmd/frostdemo.
//
// # Coordinate System
//
// Logical pixels, origin at the top-left of the screen, y down. Blur
// regions announced by windows are window-local, relative to the top-left
// of the contents rectangle.
package frost

// Version is the current version of the module.
const Version = "0.1.0"
