package models

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// RawEntry is one filesystem path discovered by the walker, before enrichment.
type RawEntry struct {
	Path     string      // Cleaned filesystem path, unique within one run
	Name     string      // Display name (argument as typed for depth 0, base name otherwise)
	Depth    int         // 0 = requested root, N = N levels below a root
	Info     fs.FileInfo // Lstat result captured during the walk (may be nil)
	Expanded bool        // The walker descended into this directory
}

// TraversalError reports a path the walker could not read.
// It is returned in place of a RawEntry and never stops the walk.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// FileType classifies a record for sorting, coloring and indicators.
type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeExecutable
	FileTypeDirectory
	FileTypeSymlink
	FileTypePipe
	FileTypeSocket
	FileTypeBlockDevice
	FileTypeCharDevice
	FileTypeSpecial
)

// FileTypeFromMode derives the FileType from lstat mode bits.
func FileTypeFromMode(mode fs.FileMode) FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return FileTypeSymlink
	case mode.IsDir():
		return FileTypeDirectory
	case mode&fs.ModeNamedPipe != 0:
		return FileTypePipe
	case mode&fs.ModeSocket != 0:
		return FileTypeSocket
	case mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice != 0:
		return FileTypeCharDevice
	case mode&fs.ModeDevice != 0:
		return FileTypeBlockDevice
	case mode&fs.ModeIrregular != 0:
		return FileTypeSpecial
	case mode&0o111 != 0:
		return FileTypeExecutable
	default:
		return FileTypeFile
	}
}

// Record is the enriched, renderable unit produced for every raw entry.
//
// Children is nil for anything that is not an expanded directory. A non-nil
// empty slice means a directory with nothing attached yet. Only the tree
// builder appends to it; after sorting it is read-only.
type Record struct {
	Path  string
	Name  string
	Depth int

	Type          FileType
	Size          int64
	Mode          fs.FileMode
	ModTime       time.Time
	Owner         string
	Group         string
	Inode         uint64
	Links         uint64
	Blocks        int64
	SymlinkTarget string
	SymlinkToDir  bool
	BrokenSymlink bool
	Git           GitStatus

	Children []*Record
}

// IsDir reports whether the record is a real directory.
func (r *Record) IsDir() bool {
	return r.Type == FileTypeDirectory
}

// IsDirLike reports whether the record groups with directories:
// a directory or a symlink resolving to one.
func (r *Record) IsDirLike() bool {
	return r.Type == FileTypeDirectory || (r.Type == FileTypeSymlink && r.SymlinkToDir)
}

// Expanded reports whether children may be attached to the record.
func (r *Record) Expanded() bool {
	return r.Children != nil
}

// Extension returns the lower-cased extension without the dot.
// Directories and dot-files without a further dot have no extension.
func (r *Record) Extension() string {
	if r.IsDir() {
		return ""
	}
	name := filepath.Base(r.Name)
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Count returns the number of records in the subtree rooted at r, r included.
func (r *Record) Count() int {
	n := 1
	for _, child := range r.Children {
		n += child.Count()
	}
	return n
}
