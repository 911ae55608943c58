//go:build !unix

package enrich

func statOf(string, bool) (platformStat, bool) {
	return platformStat{}, false
}

func userName(uid uint32) string { return formatID(uid) }

func groupName(gid uint32) string { return formatID(gid) }
