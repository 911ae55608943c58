package models

import (
	"fmt"
	"strings"
)

// Layout selects how records are arranged on screen.
type Layout int

const (
	LayoutGrid Layout = iota
	LayoutTree
	LayoutOneLine
)

// SortColumn selects the secondary sort key.
type SortColumn int

const (
	SortNone SortColumn = iota
	SortName
	SortExtension
	SortTime
	SortSize
	SortVersion
	SortGitStatus
)

// DirGrouping places directories before or after every other record.
type DirGrouping int

const (
	DirGroupingNone DirGrouping = iota
	DirGroupingFirst
	DirGroupingLast
)

// DisplayFilter selects which entries the walker yields.
type DisplayFilter int

const (
	DisplayVisibleOnly DisplayFilter = iota
	DisplayAlmostAll
	DisplayAll
	DisplayDirectoryOnly
)

// SizeFormat selects how sizes are printed.
type SizeFormat int

const (
	SizeDefault SizeFormat = iota
	SizeShort
	SizeBytes
)

// PermissionFormat selects how permission bits are printed.
type PermissionFormat int

const (
	PermissionRwx PermissionFormat = iota
	PermissionOctal
	PermissionDisable
)

// When is a tri-state switch used for color and hyperlinks.
type When int

const (
	WhenAuto When = iota
	WhenAlways
	WhenNever
)

var (
	layoutNames      = []string{"grid", "tree", "oneline"}
	sortColumnNames  = []string{"none", "name", "extension", "time", "size", "version", "git"}
	dirGroupingNames = []string{"none", "first", "last"}
	displayNames     = []string{"visible-only", "almost-all", "all", "directory-only"}
	sizeFormatNames  = []string{"default", "short", "bytes"}
	permissionNames  = []string{"rwx", "octal", "disable"}
	whenNames        = []string{"auto", "always", "never"}
)

// aliases accepted on input only; String always returns the canonical name.
var enumAliases = map[string]string{
	"git-status":       "git",
	"system-protected": "all",
	"one-line":         "oneline",
}

func parseEnum(kind, value string, names []string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := enumAliases[v]; ok {
		v = alias
	}
	for i, name := range names {
		if name == v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q, must be one of: %s", kind, value, strings.Join(names, ", "))
}

func enumName(i int, names []string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

// ParseLayout parses "grid", "tree" or "oneline".
func ParseLayout(s string) (Layout, error) {
	i, err := parseEnum("layout", s, layoutNames)
	return Layout(i), err
}

func (l Layout) String() string { return enumName(int(l), layoutNames) }

func (l Layout) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Layout) UnmarshalText(b []byte) error {
	v, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseSortColumn parses a sort column name ("git-status" is accepted for "git").
func ParseSortColumn(s string) (SortColumn, error) {
	i, err := parseEnum("sort column", s, sortColumnNames)
	return SortColumn(i), err
}

func (c SortColumn) String() string { return enumName(int(c), sortColumnNames) }

func (c SortColumn) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *SortColumn) UnmarshalText(b []byte) error {
	v, err := ParseSortColumn(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseDirGrouping parses "none", "first" or "last".
func ParseDirGrouping(s string) (DirGrouping, error) {
	i, err := parseEnum("dir grouping", s, dirGroupingNames)
	return DirGrouping(i), err
}

func (g DirGrouping) String() string { return enumName(int(g), dirGroupingNames) }

func (g DirGrouping) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *DirGrouping) UnmarshalText(b []byte) error {
	v, err := ParseDirGrouping(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseDisplayFilter parses a display filter name.
func ParseDisplayFilter(s string) (DisplayFilter, error) {
	i, err := parseEnum("display", s, displayNames)
	return DisplayFilter(i), err
}

func (d DisplayFilter) String() string { return enumName(int(d), displayNames) }

func (d DisplayFilter) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DisplayFilter) UnmarshalText(b []byte) error {
	v, err := ParseDisplayFilter(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseSizeFormat parses "default", "short" or "bytes".
func ParseSizeFormat(s string) (SizeFormat, error) {
	i, err := parseEnum("size", s, sizeFormatNames)
	return SizeFormat(i), err
}

func (f SizeFormat) String() string { return enumName(int(f), sizeFormatNames) }

func (f SizeFormat) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *SizeFormat) UnmarshalText(b []byte) error {
	v, err := ParseSizeFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParsePermissionFormat parses "rwx", "octal" or "disable".
func ParsePermissionFormat(s string) (PermissionFormat, error) {
	i, err := parseEnum("permission", s, permissionNames)
	return PermissionFormat(i), err
}

func (p PermissionFormat) String() string { return enumName(int(p), permissionNames) }

func (p PermissionFormat) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PermissionFormat) UnmarshalText(b []byte) error {
	v, err := ParsePermissionFormat(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseWhen parses "auto", "always" or "never".
func ParseWhen(s string) (When, error) {
	i, err := parseEnum("when", s, whenNames)
	return When(i), err
}

func (w When) String() string { return enumName(int(w), whenNames) }

func (w When) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *When) UnmarshalText(b []byte) error {
	v, err := ParseWhen(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
