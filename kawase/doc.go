// Package kawase renders the dual-Kawase background blur behind windows.
//
// A Renderer owns the blur programs, a noise texture and one render chain
// per (window, output) pair. A chain is iterations+1 textures, level i being
// the blurred area's size divided by 2^i. Each frame the background behind
// the blur shape is copied into level 0, downsampled level by level,
// upsampled back and the last upsample is drawn straight onto the screen,
// restricted to the visible part of the shape. Optional dithering noise is
// added on top to hide banding.
//
// Failures never abort a frame for other windows: a program that does not
// compile disables the renderer, a failed allocation skips the window for
// this frame, and a failed vertex upload skips the draw.
package kawase
