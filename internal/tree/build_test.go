package tree

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/harrison/kgls/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(path string, depth int, isDir bool) Entry {
	r := &models.Record{Path: path, Name: filepath.Base(path), Depth: depth, Type: models.FileTypeFile}
	if isDir {
		r.Type = models.FileTypeDirectory
		r.Children = []*models.Record{}
	}
	return Entry{Record: r, Depth: depth}
}

func paths(records []*models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func collect(records []*models.Record, seen map[string]int) {
	for _, r := range records {
		seen[r.Path]++
		collect(r.Children, seen)
	}
}

func TestBuild_AttachesChildrenToParents(t *testing.T) {
	entries := []Entry{
		entry("/tmp/x/file1", 1, false),
		entry("/tmp/x/dir1/inner/deep.txt", 3, false),
		entry("/tmp/x/dir1", 1, true),
		entry("/tmp/x/dir1/inner", 2, true),
		entry("/tmp/x/dir1/a.txt", 2, false),
	}

	roots, orphans := Build(entries)

	assert.Empty(t, orphans)
	assert.Equal(t, []string{"/tmp/x/file1", "/tmp/x/dir1"}, paths(roots))

	dir1 := roots[1]
	assert.Equal(t, []string{"/tmp/x/dir1/inner", "/tmp/x/dir1/a.txt"}, paths(dir1.Children))
	assert.Equal(t, []string{"/tmp/x/dir1/inner/deep.txt"}, paths(dir1.Children[0].Children))
	assert.Nil(t, roots[0].Children)
}

func TestBuild_EmptyDirectoryKeepsEmptyChildren(t *testing.T) {
	roots, _ := Build([]Entry{entry("/tmp/x/dir1", 1, true), entry("/tmp/x/file1", 1, false)})

	require.Len(t, roots, 2)
	assert.NotNil(t, roots[0].Children)
	assert.Empty(t, roots[0].Children)
	assert.Nil(t, roots[1].Children)
}

func TestBuild_ChildCreatesChildrenOnUnexpandedParent(t *testing.T) {
	parent := entry("/a/p", 1, false)
	parent.Record.Type = models.FileTypeDirectory

	roots, _ := Build([]Entry{parent, entry("/a/p/c", 2, false)})

	require.Len(t, roots, 1)
	assert.Equal(t, []string{"/a/p/c"}, paths(roots[0].Children))
}

func TestBuild_OrphanPromotedWithDiagnostic(t *testing.T) {
	// /tmp/x/sub was filtered out; only its child made it into the result set.
	entries := []Entry{
		entry("/tmp/x/other.txt", 1, false),
		entry("/tmp/x/sub/leaf.txt", 2, false),
	}

	roots, orphans := Build(entries)

	assert.Equal(t, []string{"/tmp/x/other.txt", "/tmp/x/sub/leaf.txt"}, paths(roots))
	require.Len(t, orphans, 1)
	assert.Equal(t, Orphan{Path: "/tmp/x/sub/leaf.txt", Parent: "/tmp/x/sub", Depth: 2}, orphans[0])
}

func TestBuild_OrphanPromotionChain(t *testing.T) {
	t.Run("parent present, grandparent absent", func(t *testing.T) {
		roots, orphans := Build([]Entry{
			entry("/a/b/c", 2, false),
			entry("/a/b", 1, true),
		})

		assert.Equal(t, []string{"/a/b"}, paths(roots))
		assert.Equal(t, []string{"/a/b/c"}, paths(roots[0].Children))
		assert.Empty(t, orphans, "depth-1 root must not warn")
	})

	t.Run("parent absent", func(t *testing.T) {
		roots, orphans := Build([]Entry{entry("/a/b/c", 2, false)})

		assert.Equal(t, []string{"/a/b/c"}, paths(roots))
		require.Len(t, orphans, 1)
		assert.Equal(t, "/a/b", orphans[0].Parent)
	})
}

func TestBuild_ShallowRootsAreSilent(t *testing.T) {
	roots, orphans := Build([]Entry{
		entry("/scan/a", 1, false),
		entry("/other/b", 1, false),
		entry("given.txt", 0, false),
		entry("/", 0, true),
	})

	assert.Len(t, roots, 4)
	assert.Empty(t, orphans)
}

func TestBuild_FilesystemRootNeverWarns(t *testing.T) {
	roots, orphans := Build([]Entry{entry("/", 5, true)})
	assert.Len(t, roots, 1)
	assert.Empty(t, orphans)
}

func TestBuild_PreservesEveryRecordExactlyOnce(t *testing.T) {
	var entries []Entry
	for i := 0; i < 4; i++ {
		d := fmt.Sprintf("/r/d%d", i)
		entries = append(entries, entry(d, 1, true))
		for j := 0; j < 3; j++ {
			sub := fmt.Sprintf("%s/s%d", d, j)
			entries = append(entries, entry(sub, 2, true))
			for k := 0; k < 3; k++ {
				entries = append(entries, entry(fmt.Sprintf("%s/f%d", sub, k), 3, false))
			}
		}
	}
	// drop a few intermediate directories to create orphans
	entries = append(entries[:5], entries[6:]...)
	entries = append(entries[:20], entries[21:]...)

	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })

	roots, orphans := Build(entries)

	seen := map[string]int{}
	collect(roots, seen)
	assert.Len(t, seen, len(entries))
	for _, e := range entries {
		assert.Equal(t, 1, seen[e.Record.Path], e.Record.Path)
	}
	assert.NotEmpty(t, orphans)

	total := 0
	for _, r := range roots {
		total += r.Count()
	}
	assert.Equal(t, len(entries), total)
}

func TestBuild_SiblingOrderFollowsInputWithinDepth(t *testing.T) {
	entries := []Entry{
		entry("/p", 1, true),
		entry("/p/c", 2, false),
		entry("/p/a", 2, false),
		entry("/p/b", 2, false),
	}

	roots, _ := Build(entries)
	require.Len(t, roots, 1)
	assert.Equal(t, []string{"/p/c", "/p/a", "/p/b"}, paths(roots[0].Children))
}

func TestBuild_Empty(t *testing.T) {
	roots, orphans := Build(nil)
	assert.Empty(t, roots)
	assert.Empty(t, orphans)
}
