// Package config loads kgls settings from a YAML or TOML file and merges
// them with command-line overrides.
//
// Precedence is flag > file > default. A key missing from the file keeps
// its default; a key present with an empty value overrides it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/kgls/internal/display"
	"github.com/harrison/kgls/internal/fileutil"
	"github.com/harrison/kgls/internal/logger"
	"github.com/harrison/kgls/internal/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ColorConfig controls colored output.
type ColorConfig struct {
	When models.When `yaml:"when" toml:"when"`
}

// RecursionConfig controls descent in flat layouts and bounds the tree.
type RecursionConfig struct {
	// Enabled lists subdirectories in flat layouts
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Depth is the deepest level listed below a root (0 = unlimited)
	Depth int `yaml:"depth" toml:"depth"`
}

// SortingConfig selects the sort column and direction.
type SortingConfig struct {
	Column      models.SortColumn  `yaml:"column" toml:"column"`
	Reverse     bool               `yaml:"reverse" toml:"reverse"`
	DirGrouping models.DirGrouping `yaml:"dir-grouping" toml:"dir-grouping"`
}

// TruncateOwnerConfig shortens long user and group names.
type TruncateOwnerConfig struct {
	// After is the maximum width before truncation (0 = never truncate)
	After int `yaml:"after" toml:"after"`

	// Marker is appended to truncated names
	Marker string `yaml:"marker" toml:"marker"`
}

// Config represents kgls configuration options
type Config struct {
	// Classic mimics plain ls: no grouping, byte sizes, no color, no links
	Classic bool `yaml:"classic" toml:"classic"`

	// Blocks are the long listing columns, in order
	Blocks []string `yaml:"blocks" toml:"blocks"`

	Color ColorConfig `yaml:"color" toml:"color"`

	// Date is "date", "relative" or "+<go layout>"
	Date string `yaml:"date" toml:"date"`

	Display models.DisplayFilter `yaml:"display" toml:"display"`

	// IgnoreGlobs hide matching entries (doublestar syntax)
	IgnoreGlobs []string `yaml:"ignore-globs" toml:"ignore-globs"`

	// Indicators appends / @ | = * to names
	Indicators bool `yaml:"indicators" toml:"indicators"`

	Layout models.Layout `yaml:"layout" toml:"layout"`

	Recursion RecursionConfig `yaml:"recursion" toml:"recursion"`

	Size models.SizeFormat `yaml:"size" toml:"size"`

	Permission models.PermissionFormat `yaml:"permission" toml:"permission"`

	Sorting SortingConfig `yaml:"sorting" toml:"sorting"`

	// Hyperlink turns names into OSC 8 file links
	Hyperlink models.When `yaml:"hyperlink" toml:"hyperlink"`

	SymlinkArrow string `yaml:"symlink-arrow" toml:"symlink-arrow"`

	// Header prints column titles in long listings
	Header bool `yaml:"header" toml:"header"`

	// Literal prints names without quoting
	Literal bool `yaml:"literal" toml:"literal"`

	// Dereference shows symlink targets' metadata instead of the link's
	Dereference bool `yaml:"dereference" toml:"dereference"`

	// TotalSize reports a directory's size as the sum of its contents
	TotalSize bool `yaml:"total-size" toml:"total-size"`

	TruncateOwner TruncateOwnerConfig `yaml:"truncate-owner" toml:"truncate-owner"`

	// LogLevel sets the diagnostics verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log-level" toml:"log-level"`

	// Long renders Blocks as rows. Set from the command line only.
	Long bool `yaml:"-" toml:"-"`
}

// DefaultConfig returns a Config with the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Blocks:       append([]string(nil), display.DefaultLongBlocks...),
		Color:        ColorConfig{When: models.WhenAuto},
		Date:         "date",
		Display:      models.DisplayVisibleOnly,
		IgnoreGlobs:  []string{},
		Layout:       models.LayoutGrid,
		Recursion:    RecursionConfig{Enabled: false, Depth: 0},
		Size:         models.SizeDefault,
		Permission:   models.PermissionRwx,
		Sorting:      SortingConfig{Column: models.SortName, DirGrouping: models.DirGroupingNone},
		Hyperlink:    models.WhenNever,
		SymlinkArrow: "⇒",
		LogLevel:     logger.DefaultLevel,
	}
}

// fileConfig mirrors Config with pointers so keys present in the file can
// be told apart from keys left out.
type fileConfig struct {
	Classic *bool     `yaml:"classic" toml:"classic"`
	Blocks  *[]string `yaml:"blocks" toml:"blocks"`
	Color   *struct {
		When *models.When `yaml:"when" toml:"when"`
	} `yaml:"color" toml:"color"`
	Date        *string               `yaml:"date" toml:"date"`
	Display     *models.DisplayFilter `yaml:"display" toml:"display"`
	IgnoreGlobs *[]string             `yaml:"ignore-globs" toml:"ignore-globs"`
	Indicators  *bool                 `yaml:"indicators" toml:"indicators"`
	Layout      *models.Layout        `yaml:"layout" toml:"layout"`
	Recursion   *struct {
		Enabled *bool `yaml:"enabled" toml:"enabled"`
		Depth   *int  `yaml:"depth" toml:"depth"`
	} `yaml:"recursion" toml:"recursion"`
	Size       *models.SizeFormat       `yaml:"size" toml:"size"`
	Permission *models.PermissionFormat `yaml:"permission" toml:"permission"`
	Sorting    *struct {
		Column      *models.SortColumn  `yaml:"column" toml:"column"`
		Reverse     *bool               `yaml:"reverse" toml:"reverse"`
		DirGrouping *models.DirGrouping `yaml:"dir-grouping" toml:"dir-grouping"`
	} `yaml:"sorting" toml:"sorting"`
	Hyperlink     *models.When `yaml:"hyperlink" toml:"hyperlink"`
	SymlinkArrow  *string      `yaml:"symlink-arrow" toml:"symlink-arrow"`
	Header        *bool        `yaml:"header" toml:"header"`
	Literal       *bool        `yaml:"literal" toml:"literal"`
	Dereference   *bool        `yaml:"dereference" toml:"dereference"`
	TotalSize     *bool        `yaml:"total-size" toml:"total-size"`
	TruncateOwner *struct {
		After  *int    `yaml:"after" toml:"after"`
		Marker *string `yaml:"marker" toml:"marker"`
	} `yaml:"truncate-owner" toml:"truncate-owner"`
	LogLevel *string `yaml:"log-level" toml:"log-level"`
}

// Format is the encoding of a config file.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatOf picks the format from the file extension; anything that is not
// .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults unless mustExist is set.
// A file that exists but cannot be read or parsed is an error.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch FormatOf(path) {
	case FormatTOML:
		err = toml.Unmarshal(data, &fc)
	default:
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.merge(&fc)
	return cfg, nil
}

// merge applies every key present in the file.
func (c *Config) merge(fc *fileConfig) {
	set(&c.Classic, fc.Classic)
	set(&c.Blocks, fc.Blocks)
	if fc.Color != nil {
		set(&c.Color.When, fc.Color.When)
	}
	set(&c.Date, fc.Date)
	set(&c.Display, fc.Display)
	set(&c.IgnoreGlobs, fc.IgnoreGlobs)
	set(&c.Indicators, fc.Indicators)
	set(&c.Layout, fc.Layout)
	if fc.Recursion != nil {
		set(&c.Recursion.Enabled, fc.Recursion.Enabled)
		set(&c.Recursion.Depth, fc.Recursion.Depth)
	}
	set(&c.Size, fc.Size)
	set(&c.Permission, fc.Permission)
	if fc.Sorting != nil {
		set(&c.Sorting.Column, fc.Sorting.Column)
		set(&c.Sorting.Reverse, fc.Sorting.Reverse)
		set(&c.Sorting.DirGrouping, fc.Sorting.DirGrouping)
	}
	set(&c.Hyperlink, fc.Hyperlink)
	set(&c.SymlinkArrow, fc.SymlinkArrow)
	set(&c.Header, fc.Header)
	set(&c.Literal, fc.Literal)
	set(&c.Dereference, fc.Dereference)
	set(&c.TotalSize, fc.TotalSize)
	if fc.TruncateOwner != nil {
		set(&c.TruncateOwner.After, fc.TruncateOwner.After)
		set(&c.TruncateOwner.Marker, fc.TruncateOwner.Marker)
	}
	set(&c.LogLevel, fc.LogLevel)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Marshal encodes the configuration in the given format. The result
// loads back to an equal Config.
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatTOML {
		return toml.Marshal(c)
	}
	return yaml.Marshal(c)
}

// Normalize applies the settings that override others: classic mode,
// and plain output when stdout is not a terminal.
func (c *Config) Normalize(stdoutIsTTY bool) {
	if c.Classic {
		c.Sorting.DirGrouping = models.DirGroupingNone
		c.Size = models.SizeBytes
		c.Permission = models.PermissionRwx
		c.Hyperlink = models.WhenNever
		c.Color.When = models.WhenNever
	}
	if !stdoutIsTTY {
		if c.Layout != models.LayoutTree {
			c.Layout = models.LayoutOneLine
		}
		c.Literal = true
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Recursion.Depth < 0 {
		return fmt.Errorf("recursion.depth must be >= 0, got %d", c.Recursion.Depth)
	}

	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log-level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if len(c.Blocks) == 0 {
		return fmt.Errorf("blocks cannot be empty")
	}
	if _, err := display.ParseBlocks(c.Blocks); err != nil {
		return err
	}

	if err := display.ValidateDate(c.Date); err != nil {
		return err
	}

	if err := fileutil.ValidateGlobs(c.IgnoreGlobs); err != nil {
		return err
	}

	if c.TruncateOwner.After < 0 {
		return fmt.Errorf("truncate-owner.after must be >= 0, got %d", c.TruncateOwner.After)
	}

	return nil
}
