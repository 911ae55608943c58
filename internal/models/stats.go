package models

import "time"

// RunStats summarizes one listing run for diagnostics.
type RunStats struct {
	Entries  int           // Records handed to the renderer
	Roots    int           // Top-level records after reconstruction
	Orphans  int           // Records promoted to roots because their parent was filtered
	Errors   int           // Invalid roots plus traversal errors
	Duration time.Duration // Wall time from first pull to render
}
