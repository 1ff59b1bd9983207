// Package ir provides the shared vocabulary of tempo: timeline enums,
// compiled timeline specs, and the trace records written by runs.
//
// This package contains type definitions and encoding only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Canonical encoding never emits JSON floats. Times and progress cross
//     the trace boundary as integer micro-units or as exact decimal strings.
//   - All JSON tags use snake_case.
//   - Frames are ordered by a logical sequence number, never wall-clock time.
package ir
