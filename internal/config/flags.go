package config

import "github.com/harrison/kgls/internal/models"

// FlagOverrides carries command-line values. Nil fields were not given and
// leave the configuration untouched.
type FlagOverrides struct {
	Classic       *bool
	Long          *bool
	Blocks        *[]string
	Color         *models.When
	Date          *string
	Display       *models.DisplayFilter
	IgnoreGlobs   *[]string
	Indicators    *bool
	Layout        *models.Layout
	Recursive     *bool
	Depth         *int
	Size          *models.SizeFormat
	Permission    *models.PermissionFormat
	SortColumn    *models.SortColumn
	Reverse       *bool
	DirGrouping   *models.DirGrouping
	Hyperlink     *models.When
	Header        *bool
	Literal       *bool
	Dereference   *bool
	TotalSize     *bool
	TruncateAfter *int
	TruncateMark  *string
	LogLevel      *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// Ignore globs given on the command line are added to the configured ones.
func (c *Config) MergeWithFlags(f FlagOverrides) {
	set(&c.Classic, f.Classic)
	set(&c.Long, f.Long)
	set(&c.Blocks, f.Blocks)
	set(&c.Color.When, f.Color)
	set(&c.Date, f.Date)
	set(&c.Display, f.Display)
	if f.IgnoreGlobs != nil {
		c.IgnoreGlobs = append(append([]string(nil), c.IgnoreGlobs...), *f.IgnoreGlobs...)
	}
	set(&c.Indicators, f.Indicators)
	set(&c.Layout, f.Layout)
	set(&c.Recursion.Enabled, f.Recursive)
	set(&c.Recursion.Depth, f.Depth)
	set(&c.Size, f.Size)
	set(&c.Permission, f.Permission)
	set(&c.Sorting.Column, f.SortColumn)
	set(&c.Sorting.Reverse, f.Reverse)
	set(&c.Sorting.DirGrouping, f.DirGrouping)
	set(&c.Hyperlink, f.Hyperlink)
	set(&c.Header, f.Header)
	set(&c.Literal, f.Literal)
	set(&c.Dereference, f.Dereference)
	set(&c.TotalSize, f.TotalSize)
	set(&c.TruncateOwner.After, f.TruncateAfter)
	set(&c.TruncateOwner.Marker, f.TruncateMark)
	set(&c.LogLevel, f.LogLevel)
}
