package display

import (
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harrison/kgls/internal/models"
	"github.com/mattn/go-runewidth"
)

// DateLayout is the layout of the "date" date format.
const DateLayout = "Mon Jan _2 15:04:05 2006"

// cell is a styled string together with the display width of its text.
type cell struct {
	text  string
	width int
}

// ValidateDate checks a date format: "date", "relative" or "+<go layout>".
func ValidateDate(format string) error {
	switch {
	case format == "date", format == "relative":
		return nil
	case strings.HasPrefix(format, "+") && len(format) > 1:
		return nil
	default:
		return fmt.Errorf("invalid date %q, must be one of: date, relative, +<layout>", format)
	}
}

func formatDate(format string, t, now time.Time) string {
	switch {
	case format == "relative":
		return humanize.RelTime(t, now, "ago", "from now")
	case strings.HasPrefix(format, "+"):
		return t.Local().Format(format[1:])
	default:
		return t.Local().Format(DateLayout)
	}
}

func formatSize(f models.SizeFormat, size int64) string {
	if size < 0 {
		size = 0
	}
	switch f {
	case models.SizeBytes:
		return strconv.FormatInt(size, 10)
	case models.SizeShort:
		if size < 1024 {
			return strconv.FormatInt(size, 10) + "B"
		}
		// "1.5 KiB" -> "1.5K"
		value, unit, _ := strings.Cut(humanize.IBytes(uint64(size)), " ")
		return value + unit[:1]
	default:
		return humanize.IBytes(uint64(size))
	}
}

// formatRwx renders the mode as a type character and three rwx triplets,
// with setuid, setgid and sticky folded into the execute positions.
func formatRwx(m fs.FileMode) string {
	var b [10]byte
	b[0] = typeChar(m)

	perm := m.Perm()
	const rwx = "rwx"
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			b[1+i] = rwx[i%3]
		} else {
			b[1+i] = '-'
		}
	}

	special := func(pos int, set bool, on, off byte) {
		if !set {
			return
		}
		if b[pos] == 'x' {
			b[pos] = on
		} else {
			b[pos] = off
		}
	}
	special(3, m&fs.ModeSetuid != 0, 's', 'S')
	special(6, m&fs.ModeSetgid != 0, 's', 'S')
	special(9, m&fs.ModeSticky != 0, 't', 'T')

	return string(b[:])
}

func typeChar(m fs.FileMode) byte {
	switch {
	case m&fs.ModeSymlink != 0:
		return 'l'
	case m.IsDir():
		return 'd'
	case m&fs.ModeNamedPipe != 0:
		return 'p'
	case m&fs.ModeSocket != 0:
		return 's'
	case m&fs.ModeCharDevice != 0:
		return 'c'
	case m&fs.ModeDevice != 0:
		return 'b'
	default:
		return '.'
	}
}

// formatOctal renders the permission bits, special bits included, as four
// octal digits.
func formatOctal(m fs.FileMode) string {
	v := uint32(m.Perm())
	if m&fs.ModeSetuid != 0 {
		v |= 0o4000
	}
	if m&fs.ModeSetgid != 0 {
		v |= 0o2000
	}
	if m&fs.ModeSticky != 0 {
		v |= 0o1000
	}
	return fmt.Sprintf("%04o", v)
}

// truncateOwner shortens owner names wider than after columns and appends
// marker. after <= 0 disables truncation.
func truncateOwner(name string, after int, marker string) string {
	if after <= 0 || runewidth.StringWidth(name) <= after {
		return name
	}
	return runewidth.Truncate(name, after, "") + marker
}

// quoteName wraps names that a shell would split or expand.
func quoteName(name string) string {
	if !strings.ContainsAny(name, " \t\n'\"$\\`!*?[](){}<>|&;#~") {
		return name
	}
	if strings.Contains(name, "'") {
		return `"` + name + `"`
	}
	return "'" + name + "'"
}

func indicator(r *models.Record) string {
	switch r.Type {
	case models.FileTypeDirectory:
		return "/"
	case models.FileTypeSymlink:
		return "@"
	case models.FileTypePipe:
		return "|"
	case models.FileTypeSocket:
		return "="
	case models.FileTypeExecutable:
		return "*"
	default:
		return ""
	}
}

// hyperlink wraps text in an OSC 8 link to the file.
func hyperlink(path, text string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return text
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return "\x1b]8;;" + u.String() + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}
