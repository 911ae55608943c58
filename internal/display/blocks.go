package display

import (
	"fmt"
	"strings"
)

// Block is one column of a long listing.
type Block int

const (
	BlockPermission Block = iota
	BlockUser
	BlockGroup
	BlockSize
	BlockDate
	BlockName
	BlockInode
	BlockLinks
	BlockGit
)

var blockNames = []string{"permission", "user", "group", "size", "date", "name", "inode", "links", "git"}

var blockHeaders = []string{"Permissions", "User", "Group", "Size", "Date Modified", "Name", "INode", "Links", "Git"}

// DefaultLongBlocks are the columns shown by --long.
var DefaultLongBlocks = []string{"permission", "user", "group", "size", "date", "name"}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return "unknown"
}

func (b Block) header() string {
	return blockHeaders[b]
}

// rightAligned blocks hold numbers.
func (b Block) rightAligned() bool {
	return b == BlockSize || b == BlockInode || b == BlockLinks
}

// ParseBlocks converts block names to Blocks, keeping the given order.
func ParseBlocks(names []string) ([]Block, error) {
	blocks := make([]Block, 0, len(names))
	for _, name := range names {
		b, ok := parseBlock(name)
		if !ok {
			return nil, fmt.Errorf("invalid block %q, must be one of: %s", name, strings.Join(blockNames, ", "))
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func parseBlock(name string) (Block, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range blockNames {
		if n == name {
			return Block(i), true
		}
	}
	return 0, false
}
