// Package enrich turns raw walker entries into display records.
package enrich

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/harrison/kgls/internal/gitstatus"
	"github.com/harrison/kgls/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const ownerCacheSize = 256

// StatusSource answers git status lookups.
type StatusSource interface {
	Status(ctx context.Context, path string) models.GitStatus
}

// Options configures an Enricher.
type Options struct {
	// GitStatus enables git status lookups (git block or git sort).
	GitStatus bool

	// Git overrides the status source (optional, uses gitstatus.NewCache if nil)
	Git StatusSource

	// Dereference describes symlink targets instead of the links.
	// Broken links are still shown as links.
	Dereference bool

	// TotalSize reports a directory's size as the sum of everything below it.
	TotalSize bool
}

// Enricher stats entries and resolves owners, symlink targets and git
// status. It is not safe for concurrent use.
type Enricher struct {
	opts   Options
	git    StatusSource
	totals map[string]int64
	users  *lru.Cache[uint32, string]
	groups *lru.Cache[uint32, string]

	lookupUser  func(uid uint32) string
	lookupGroup func(gid uint32) string
}

// New creates an Enricher.
func New(opts Options) *Enricher {
	users, _ := lru.New[uint32, string](ownerCacheSize)
	groups, _ := lru.New[uint32, string](ownerCacheSize)

	e := &Enricher{
		opts:        opts,
		totals:      make(map[string]int64),
		users:       users,
		groups:      groups,
		lookupUser:  userName,
		lookupGroup: groupName,
	}
	if opts.GitStatus {
		e.git = opts.Git
		if e.git == nil {
			e.git = gitstatus.NewCache()
		}
	}
	return e
}

// Enrich builds the record for raw. It never fails: when the path cannot
// be stat'ed the record carries only path, name and depth. ctx bounds the
// git and total-size lookups.
func (e *Enricher) Enrich(ctx context.Context, raw models.RawEntry) *models.Record {
	rec := &models.Record{Path: raw.Path, Name: raw.Name, Depth: raw.Depth}
	if raw.Expanded {
		rec.Children = []*models.Record{}
	}

	info := raw.Info
	if info == nil {
		var err error
		if info, err = os.Lstat(raw.Path); err != nil {
			return rec
		}
	}

	follow := false
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Stat(raw.Path)
		switch {
		case err != nil:
			rec.BrokenSymlink = true
			rec.SymlinkTarget, _ = os.Readlink(raw.Path)
		case e.opts.Dereference:
			info, follow = target, true
		default:
			rec.SymlinkTarget, _ = os.Readlink(raw.Path)
			rec.SymlinkToDir = target.IsDir()
		}
	}

	rec.Type = models.FileTypeFromMode(info.Mode())
	rec.Size = info.Size()
	rec.Mode = info.Mode()
	rec.ModTime = info.ModTime()

	if e.opts.TotalSize && rec.Type == models.FileTypeDirectory {
		rec.Size = e.totalSize(ctx, raw.Path, info.Size())
	}

	if st, ok := statOf(raw.Path, follow); ok {
		rec.Inode = st.inode
		rec.Links = st.links
		rec.Blocks = st.blocks
		rec.Owner = e.owner(st.uid)
		rec.Group = e.group(st.gid)
	}

	if e.git != nil {
		rec.Git = e.git.Status(ctx, raw.Path)
	}
	return rec
}

// totalSize returns own plus the lstat size of every entry below dir.
// Symlinks count as links and are not followed. Unreadable directories
// contribute what could be read. Results are memoized per directory.
func (e *Enricher) totalSize(ctx context.Context, dir string, own int64) int64 {
	if total, ok := e.totals[dir]; ok {
		return total
	}
	total := own
	if ctx.Err() != nil {
		return total
	}
	entries, _ := os.ReadDir(dir)
	for _, de := range entries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.IsDir() {
			total += e.totalSize(ctx, filepath.Join(dir, de.Name()), info.Size())
			continue
		}
		total += info.Size()
	}
	if ctx.Err() == nil {
		e.totals[dir] = total
	}
	return total
}

func (e *Enricher) owner(uid uint32) string {
	if name, ok := e.users.Get(uid); ok {
		return name
	}
	name := e.lookupUser(uid)
	e.users.Add(uid, name)
	return name
}

func (e *Enricher) group(gid uint32) string {
	if name, ok := e.groups.Get(gid); ok {
		return name
	}
	name := e.lookupGroup(gid)
	e.groups.Add(gid, name)
	return name
}

// platformStat holds the fields only the platform stat call provides.
type platformStat struct {
	inode  uint64
	links  uint64
	blocks int64
	uid    uint32
	gid    uint32
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
