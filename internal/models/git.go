package models

// GitStatus is the git state of a path. The declaration order is the sort
// rank used by the git sort column.
type GitStatus int

const (
	GitStatusDefault GitStatus = iota // not in a repository, or unknown
	GitStatusUnmodified
	GitStatusNewInIndex
	GitStatusNewInWorkdir
	GitStatusDeleted
	GitStatusModified
	GitStatusRenamed
	GitStatusIgnored
	GitStatusTypechange
	GitStatusConflicted
)

// Symbol returns the one-character marker shown in the git block.
func (g GitStatus) Symbol() string {
	switch g {
	case GitStatusUnmodified:
		return "-"
	case GitStatusNewInIndex:
		return "N"
	case GitStatusNewInWorkdir:
		return "?"
	case GitStatusDeleted:
		return "D"
	case GitStatusModified:
		return "M"
	case GitStatusRenamed:
		return "R"
	case GitStatusIgnored:
		return "I"
	case GitStatusTypechange:
		return "T"
	case GitStatusConflicted:
		return "C"
	default:
		return " "
	}
}
