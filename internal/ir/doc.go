// Package ir provides the declarative chart and trace types for motionchart.
//
// This package contains type definitions and their canonical encodings.
// All other internal packages import ir; ir imports nothing internal. This
// keeps IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - trinary values travel as strings
//   - All JSON tags use snake_case
//   - Logical clocks (tick numbers) only, never wall-clock timestamps
//   - Node names are NFC-normalized at every boundary
package ir
