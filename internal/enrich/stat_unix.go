//go:build unix

package enrich

import (
	"os/user"

	"golang.org/x/sys/unix"
)

func statOf(path string, follow bool) (platformStat, bool) {
	var st unix.Stat_t
	stat := unix.Lstat
	if follow {
		stat = unix.Stat
	}
	if err := stat(path, &st); err != nil {
		return platformStat{}, false
	}
	return platformStat{
		inode:  uint64(st.Ino),
		links:  uint64(st.Nlink),
		blocks: int64(st.Blocks),
		uid:    st.Uid,
		gid:    st.Gid,
	}, true
}

func userName(uid uint32) string {
	u, err := user.LookupId(formatID(uid))
	if err != nil {
		return formatID(uid)
	}
	return u.Username
}

func groupName(gid uint32) string {
	g, err := user.LookupGroupId(formatID(gid))
	if err != nil {
		return formatID(gid)
	}
	return g.Name
}
