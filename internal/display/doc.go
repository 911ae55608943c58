// Package display renders listings to a terminal or pipe.
//
// A Renderer is built once per run from Options and then used for either a
// flat list (RenderFlat) or a forest (RenderTree). It never reorders what
// it is given.
//
// # Flat output
//
// Without blocks, names are packed into columns that fit the terminal
// width (LayoutGrid) or printed one per line (LayoutOneLine). With blocks,
// every record becomes one row of aligned columns:
//
//	drwxr-xr-x  alice  staff  4.0 KiB  Mon Jan  2 15:04:05 2006  src
//	.rw-r--r--  alice  staff    812 B  Mon Jan  2 15:04:05 2006  go.mod
//
// # Tree output
//
// Children are drawn below their parent with box-drawing prefixes. Blocks,
// when configured, are aligned to the left of the prefix:
//
//	src
//	├── main.go
//	└── internal
//	    └── core.go
//
// # Styling
//
// Colors come from fatih/color and are switched per Renderer, so a
// listing to a pipe stays plain even when stderr is colorized. Widths are
// measured with go-runewidth on the unstyled text.
package display
