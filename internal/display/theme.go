package display

import (
	"github.com/fatih/color"
	"github.com/harrison/kgls/internal/models"
)

// theme holds one color per styled element. Every color is explicitly
// enabled or disabled so the global color.NoColor does not leak in.
type theme struct {
	dir, symlink, broken, exec, pipe, socket, device, special *color.Color

	read, write, execBit, noAccess *color.Color

	user, group, size, date, inode, links, header *color.Color

	gitNew, gitModified, gitDeleted, gitRenamed, gitIgnored, gitConflicted, gitClean *color.Color
}

func newTheme(enabled bool) *theme {
	t := &theme{
		dir:      color.New(color.FgBlue, color.Bold),
		symlink:  color.New(color.FgCyan),
		broken:   color.New(color.FgRed),
		exec:     color.New(color.FgGreen, color.Bold),
		pipe:     color.New(color.FgYellow),
		socket:   color.New(color.FgMagenta),
		device:   color.New(color.FgYellow, color.Bold),
		special:  color.New(color.FgHiBlack),
		read:     color.New(color.FgYellow),
		write:    color.New(color.FgRed),
		execBit:  color.New(color.FgGreen),
		noAccess: color.New(color.FgHiBlack),
		user:     color.New(color.FgHiYellow),
		group:    color.New(color.FgYellow),
		size:     color.New(color.FgHiGreen),
		date:     color.New(color.FgHiBlue),
		inode:    color.New(color.FgMagenta),
		links:    color.New(color.FgHiMagenta),
		header:   color.New(color.Underline),

		gitNew:        color.New(color.FgGreen),
		gitModified:   color.New(color.FgYellow),
		gitDeleted:    color.New(color.FgRed),
		gitRenamed:    color.New(color.FgMagenta),
		gitIgnored:    color.New(color.FgHiBlack),
		gitConflicted: color.New(color.FgRed, color.Bold),
		gitClean:      color.New(color.FgHiBlack),
	}

	for _, c := range t.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

func (t *theme) all() []*color.Color {
	return []*color.Color{
		t.dir, t.symlink, t.broken, t.exec, t.pipe, t.socket, t.device, t.special,
		t.read, t.write, t.execBit, t.noAccess,
		t.user, t.group, t.size, t.date, t.inode, t.links, t.header,
		t.gitNew, t.gitModified, t.gitDeleted, t.gitRenamed, t.gitIgnored, t.gitConflicted, t.gitClean,
	}
}

// forName picks the color of a record's name.
func (t *theme) forName(r *models.Record) *color.Color {
	switch r.Type {
	case models.FileTypeDirectory:
		return t.dir
	case models.FileTypeSymlink:
		if r.BrokenSymlink {
			return t.broken
		}
		return t.symlink
	case models.FileTypeExecutable:
		return t.exec
	case models.FileTypePipe:
		return t.pipe
	case models.FileTypeSocket:
		return t.socket
	case models.FileTypeBlockDevice, models.FileTypeCharDevice:
		return t.device
	case models.FileTypeSpecial:
		return t.special
	default:
		return nil
	}
}

// forPermission picks the color of one character of an rwx string.
func (t *theme) forPermission(c byte) *color.Color {
	switch c {
	case 'r':
		return t.read
	case 'w':
		return t.write
	case 'x', 's', 't':
		return t.execBit
	case '-', 'S', 'T':
		return t.noAccess
	default:
		return nil
	}
}

func (t *theme) forGit(s models.GitStatus) *color.Color {
	switch s {
	case models.GitStatusNewInIndex, models.GitStatusNewInWorkdir:
		return t.gitNew
	case models.GitStatusModified, models.GitStatusTypechange:
		return t.gitModified
	case models.GitStatusDeleted:
		return t.gitDeleted
	case models.GitStatusRenamed:
		return t.gitRenamed
	case models.GitStatusIgnored:
		return t.gitIgnored
	case models.GitStatusConflicted:
		return t.gitConflicted
	default:
		return t.gitClean
	}
}

// paint applies c to s; a nil color leaves s unchanged.
func paint(c *color.Color, s string) string {
	if c == nil || s == "" {
		return s
	}
	return c.Sprint(s)
}
