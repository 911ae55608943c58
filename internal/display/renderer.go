package display

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/kgls/internal/models"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80
	columnGap        = 2
)

// Options configures a Renderer.
type Options struct {
	Layout models.Layout // grid or one-line for RenderFlat without blocks
	Blocks []Block       // long listing columns, empty = names only

	Color      bool
	Size       models.SizeFormat
	Date       string // "date", "relative" or "+<go layout>"
	Permission models.PermissionFormat

	Indicators   bool
	Literal      bool
	Hyperlink    bool
	Header       bool
	SymlinkArrow string

	TruncateOwnerAfter  int
	TruncateOwnerMarker string

	TermWidth int              // 0 = detect from the writer
	Now       func() time.Time // reference time for relative dates
}

// Renderer writes records. It is safe to reuse across calls but not
// concurrently.
type Renderer struct {
	opts   Options
	theme  *theme
	blocks []Block
}

// New creates a Renderer. PermissionDisable removes the permission block.
func New(opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Date == "" {
		opts.Date = "date"
	}

	blocks := make([]Block, 0, len(opts.Blocks))
	for _, b := range opts.Blocks {
		if b == BlockPermission && opts.Permission == models.PermissionDisable {
			continue
		}
		blocks = append(blocks, b)
	}

	return &Renderer{opts: opts, theme: newTheme(opts.Color), blocks: blocks}
}

// long reports whether records are rendered as rows of blocks.
func (r *Renderer) long() bool {
	return len(r.blocks) > 0
}

// RenderFlat writes records as a grid, one name per line, or long rows.
func (r *Renderer) RenderFlat(w io.Writer, records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	switch {
	case r.long():
		rows := make([][]cell, 0, len(records)+1)
		if r.opts.Header {
			rows = append(rows, r.headerRow())
		}
		for _, rec := range records {
			rows = append(rows, r.row(rec))
		}
		writeTable(&b, rows, r.blocks)
	case r.opts.Layout == models.LayoutGrid:
		names := make([]cell, len(records))
		for i, rec := range records {
			names[i] = r.name(rec)
		}
		writeGrid(&b, names, r.termWidth(w))
	default:
		for _, rec := range records {
			b.WriteString(r.name(rec).text)
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// termWidth returns the configured width, the terminal width of w, or 80.
func (r *Renderer) termWidth(w io.Writer) int {
	if r.opts.TermWidth > 0 {
		return r.opts.TermWidth
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

func (r *Renderer) headerRow() []cell {
	row := make([]cell, len(r.blocks))
	for i, b := range r.blocks {
		h := b.header()
		row[i] = cell{text: paint(r.theme.header, h), width: runewidth.StringWidth(h)}
	}
	return row
}

// row renders every configured block of rec.
func (r *Renderer) row(rec *models.Record) []cell {
	row := make([]cell, len(r.blocks))
	for i, b := range r.blocks {
		row[i] = r.block(b, rec)
	}
	return row
}

func (r *Renderer) block(b Block, rec *models.Record) cell {
	t := r.theme
	switch b {
	case BlockPermission:
		if r.opts.Permission == models.PermissionOctal {
			return r.paintCell(t.execBit, formatOctal(rec.Mode))
		}
		return r.permission(rec)
	case BlockUser:
		return r.paintCell(t.user, truncateOwner(rec.Owner, r.opts.TruncateOwnerAfter, r.opts.TruncateOwnerMarker))
	case BlockGroup:
		return r.paintCell(t.group, truncateOwner(rec.Group, r.opts.TruncateOwnerAfter, r.opts.TruncateOwnerMarker))
	case BlockSize:
		return r.paintCell(t.size, formatSize(r.opts.Size, rec.Size))
	case BlockDate:
		return r.paintCell(t.date, formatDate(r.opts.Date, rec.ModTime, r.opts.Now()))
	case BlockInode:
		return r.paintCell(t.inode, strconv.FormatUint(rec.Inode, 10))
	case BlockLinks:
		return r.paintCell(t.links, strconv.FormatUint(rec.Links, 10))
	case BlockGit:
		return r.paintCell(t.forGit(rec.Git), rec.Git.Symbol())
	default:
		return r.name(rec)
	}
}

func (r *Renderer) paintCell(c *color.Color, s string) cell {
	return cell{text: paint(c, s), width: runewidth.StringWidth(s)}
}

func (r *Renderer) permission(rec *models.Record) cell {
	s := formatRwx(rec.Mode)
	var b strings.Builder
	b.WriteString(paint(r.theme.forName(rec), s[:1]))
	for i := 1; i < len(s); i++ {
		b.WriteString(paint(r.theme.forPermission(s[i]), s[i:i+1]))
	}
	return cell{text: b.String(), width: len(s)}
}

// name renders the file name with quoting, color, hyperlink and indicator.
// Long rows also show the symlink target.
func (r *Renderer) name(rec *models.Record) cell {
	text := rec.Name
	if !r.opts.Literal {
		text = quoteName(text)
	}
	width := runewidth.StringWidth(text)

	out := paint(r.theme.forName(rec), text)
	if r.opts.Hyperlink {
		out = hyperlink(rec.Path, out)
	}

	if r.opts.Indicators {
		ind := indicator(rec)
		out += ind
		width += len(ind)
	}

	if r.long() && rec.Type == models.FileTypeSymlink && rec.SymlinkTarget != "" {
		arrow := " " + r.opts.SymlinkArrow + " "
		target := rec.SymlinkTarget
		targetColor := r.theme.symlink
		if rec.BrokenSymlink {
			targetColor = r.theme.broken
		}
		out += arrow + paint(targetColor, target)
		width += runewidth.StringWidth(arrow) + runewidth.StringWidth(target)
	}

	return cell{text: out, width: width}
}
