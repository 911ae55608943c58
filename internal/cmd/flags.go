package cmd

import (
	"github.com/harrison/kgls/internal/config"
	"github.com/harrison/kgls/internal/models"
	"github.com/spf13/cobra"
)

// flagValues holds the parsed command line. Only flags the user actually
// set are turned into config overrides.
type flagValues struct {
	all, almostAll, directoryOnly bool

	long, oneline, tree, recursive bool
	depth                          int

	sortTime, sortSize, sortExtension, sortVersion, sortGit, noSort bool
	sort                                                            string
	reverse                                                         bool
	groupDirs                                                       string
	groupDirsFirst                                                  bool

	classic     bool
	ignoreGlobs []string
	color       string
	size        string
	date        string
	permission  string
	blocks      []string
	header      bool
	classify    bool
	hyperlink   string
	literal     bool
	dereference bool
	totalSize   bool

	truncateAfter  int
	truncateMarker string

	configFile   string
	ignoreConfig bool
	initConfig   bool
	force        bool
	logLevel     string
}

func (f *flagValues) register(cmd *cobra.Command) {
	fl := cmd.Flags()

	fl.BoolVarP(&f.all, "all", "a", false, "Do not ignore entries starting with .")
	fl.BoolVarP(&f.almostAll, "almost-all", "A", false, "Do not ignore entries starting with . (. and .. are never listed)")
	fl.BoolVarP(&f.directoryOnly, "directory-only", "d", false, "List directories themselves, not their contents")

	fl.BoolVarP(&f.long, "long", "l", false, "Display extended file metadata as a table")
	fl.BoolVarP(&f.oneline, "oneline", "1", false, "Display one entry per line")
	fl.BoolVar(&f.tree, "tree", false, "Recurse into directories and present the result as a tree")
	fl.BoolVarP(&f.recursive, "recursive", "R", false, "Recurse into directories")
	fl.IntVar(&f.depth, "depth", 0, "Stop recursing after this depth (0 = unlimited)")

	fl.BoolVarP(&f.sortTime, "timesort", "t", false, "Sort by time modified")
	fl.BoolVarP(&f.sortSize, "sizesort", "S", false, "Sort by size")
	fl.BoolVarP(&f.sortExtension, "extensionsort", "X", false, "Sort by file extension")
	fl.BoolVarP(&f.sortVersion, "versionsort", "v", false, "Natural sort of version numbers within names")
	fl.BoolVarP(&f.sortGit, "gitsort", "G", false, "Sort by git status")
	fl.BoolVarP(&f.noSort, "no-sort", "U", false, "Do not sort, list entries in directory order")
	fl.StringVar(&f.sort, "sort", "", "Sort by column: name, size, time, version, extension, git, none")
	fl.BoolVarP(&f.reverse, "reverse", "r", false, "Reverse the order of the sort")
	fl.StringVar(&f.groupDirs, "group-dirs", "", "Group directories: none, first, last")
	fl.BoolVar(&f.groupDirsFirst, "group-directories-first", false, "Group directories before other files (same as --group-dirs=first)")

	fl.BoolVar(&f.classic, "classic", false, "Plain ls-like output")
	fl.StringArrayVarP(&f.ignoreGlobs, "ignore-glob", "I", nil, "Do not display files matching the glob (repeatable)")
	fl.StringVar(&f.color, "color", "", "When to use colors: auto, always, never")
	fl.StringVar(&f.size, "size", "", "How to display size: default, short, bytes")
	fl.StringVar(&f.date, "date", "", "How to display date: date, relative, +<go layout>")
	fl.StringVar(&f.permission, "permission", "", "How to display permissions: rwx, octal, disable")
	fl.StringSliceVar(&f.blocks, "blocks", nil, "Comma separated long listing columns (implies --long)")
	fl.BoolVar(&f.header, "header", false, "Display column headers in long listings")
	fl.BoolVarP(&f.classify, "classify", "F", false, "Append indicator (one of */=@|) to entries")
	fl.StringVar(&f.hyperlink, "hyperlink", "", "Attach hyperlinks to file names: auto, always, never")
	fl.BoolVarP(&f.literal, "literal", "N", false, "Print entry names without quoting")
	fl.BoolVarP(&f.dereference, "dereference", "L", false, "Show information for the file a symbolic link references")
	fl.BoolVar(&f.totalSize, "total-size", false, "Display the total size of directories")
	fl.IntVar(&f.truncateAfter, "truncate-owner-after", 0, "Truncate user and group names longer than this")
	fl.StringVar(&f.truncateMarker, "truncate-owner-marker", "", "Marker appended to truncated owner names")

	fl.StringVar(&f.configFile, "config-file", "", "Path to config file (default: $KGLS_CONFIG_HOME/config.yaml)")
	fl.BoolVar(&f.ignoreConfig, "ignore-config", false, "Ignore the configuration file")
	fl.BoolVar(&f.initConfig, "init-config", false, "Write the default configuration file and exit")
	fl.BoolVar(&f.force, "force", false, "Overwrite an existing file with --init-config")
	fl.StringVar(&f.logLevel, "log-level", "", "Diagnostics verbosity: trace, debug, info, warn, error")
}

// overrides converts the flags that were set into config overrides.
func (f *flagValues) overrides(cmd *cobra.Command) (config.FlagOverrides, error) {
	var o config.FlagOverrides
	changed := cmd.Flags().Changed

	if changed("classic") {
		o.Classic = &f.classic
	}
	if f.long || changed("blocks") {
		long := true
		o.Long = &long
	}
	if changed("blocks") {
		o.Blocks = &f.blocks
	}
	if changed("ignore-glob") {
		o.IgnoreGlobs = &f.ignoreGlobs
	}

	if d, ok := f.display(); ok {
		o.Display = &d
	}
	if l, ok := f.layout(); ok {
		o.Layout = &l
	}
	if changed("recursive") {
		o.Recursive = &f.recursive
	}
	if changed("depth") {
		o.Depth = &f.depth
	}

	col, ok, err := f.sortColumn()
	if err != nil {
		return o, err
	}
	if ok {
		o.SortColumn = &col
	}
	if changed("reverse") {
		o.Reverse = &f.reverse
	}
	if f.groupDirsFirst {
		g := models.DirGroupingFirst
		o.DirGrouping = &g
	} else if changed("group-dirs") {
		g, err := models.ParseDirGrouping(f.groupDirs)
		if err != nil {
			return o, err
		}
		o.DirGrouping = &g
	}

	if changed("color") {
		w, err := models.ParseWhen(f.color)
		if err != nil {
			return o, err
		}
		o.Color = &w
	}
	if changed("hyperlink") {
		w, err := models.ParseWhen(f.hyperlink)
		if err != nil {
			return o, err
		}
		o.Hyperlink = &w
	}
	if changed("size") {
		s, err := models.ParseSizeFormat(f.size)
		if err != nil {
			return o, err
		}
		o.Size = &s
	}
	if changed("permission") {
		p, err := models.ParsePermissionFormat(f.permission)
		if err != nil {
			return o, err
		}
		o.Permission = &p
	}
	if changed("date") {
		o.Date = &f.date
	}
	if changed("header") {
		o.Header = &f.header
	}
	if changed("classify") {
		o.Indicators = &f.classify
	}
	if changed("literal") {
		o.Literal = &f.literal
	}
	if changed("dereference") {
		o.Dereference = &f.dereference
	}
	if changed("total-size") {
		o.TotalSize = &f.totalSize
	}
	if changed("truncate-owner-after") {
		o.TruncateAfter = &f.truncateAfter
	}
	if changed("truncate-owner-marker") {
		o.TruncateMark = &f.truncateMarker
	}
	if changed("log-level") {
		o.LogLevel = &f.logLevel
	}

	return o, nil
}

// display resolves -d, -a and -A, strongest first.
func (f *flagValues) display() (models.DisplayFilter, bool) {
	switch {
	case f.directoryOnly:
		return models.DisplayDirectoryOnly, true
	case f.all:
		return models.DisplayAll, true
	case f.almostAll:
		return models.DisplayAlmostAll, true
	}
	return 0, false
}

// layout resolves --tree and -1. --long keeps the configured layout;
// long rows replace the grid and decorate the tree.
func (f *flagValues) layout() (models.Layout, bool) {
	switch {
	case f.tree:
		return models.LayoutTree, true
	case f.oneline:
		return models.LayoutOneLine, true
	}
	return 0, false
}

// sortColumn resolves the sort shortcuts. When several are given the
// strongest wins: time, size, extension, version, git, then no-sort.
// --sort is weaker than every shortcut.
func (f *flagValues) sortColumn() (models.SortColumn, bool, error) {
	switch {
	case f.sortTime:
		return models.SortTime, true, nil
	case f.sortSize:
		return models.SortSize, true, nil
	case f.sortExtension:
		return models.SortExtension, true, nil
	case f.sortVersion:
		return models.SortVersion, true, nil
	case f.sortGit:
		return models.SortGitStatus, true, nil
	case f.noSort:
		return models.SortNone, true, nil
	case f.sort != "":
		col, err := models.ParseSortColumn(f.sort)
		return col, err == nil, err
	}
	return 0, false, nil
}
