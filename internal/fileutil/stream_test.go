package fileutil

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/harrison/kgls/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree creates files (and their parent directories) under a temp dir.
// Paths ending in "/" are created as empty directories.
func makeTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return root
}

type collected struct {
	entries map[string]models.RawEntry // keyed by slash path relative to root
	errs    []error
}

func drain(t *testing.T, root string, roots []string, opts WalkOptions) collected {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := NewStream(ctx, roots, opts)
	defer s.Close()

	out := collected{entries: map[string]models.RawEntry{}}
	for {
		e, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			require.NotErrorIs(t, err, context.DeadlineExceeded)
			out.errs = append(out.errs, err)
			continue
		}
		rel, relErr := filepath.Rel(root, e.Path)
		require.NoError(t, relErr)
		rel = filepath.ToSlash(rel)
		_, dup := out.entries[rel]
		require.False(t, dup, "duplicate entry %s", rel)
		out.entries[rel] = e
	}
}

func (c collected) keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestStream_RecursiveWalk(t *testing.T) {
	root := makeTree(t, "file1", "dir1/a.txt", "dir1/inner/deep.txt", "empty/")

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited})

	assert.Empty(t, got.errs)
	assert.Equal(t, []string{"dir1", "dir1/a.txt", "dir1/inner", "dir1/inner/deep.txt", "empty", "file1"}, got.keys())

	assert.Equal(t, 1, got.entries["file1"].Depth)
	assert.Equal(t, 2, got.entries["dir1/inner"].Depth)
	assert.Equal(t, 3, got.entries["dir1/inner/deep.txt"].Depth)
	assert.Equal(t, "deep.txt", got.entries["dir1/inner/deep.txt"].Name)

	assert.True(t, got.entries["dir1"].Expanded)
	assert.True(t, got.entries["empty"].Expanded)
	assert.False(t, got.entries["file1"].Expanded)
	require.NotNil(t, got.entries["file1"].Info)
	assert.Equal(t, int64(1), got.entries["file1"].Info.Size())
}

func TestStream_MaxDepth(t *testing.T) {
	root := makeTree(t, "a", "d/b", "d/e/c")

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: 1})
	assert.Equal(t, []string{"a", "d"}, got.keys())
	assert.False(t, got.entries["d"].Expanded, "directories at the depth limit are not descended")

	got = drain(t, root, []string{root}, WalkOptions{MaxDepth: 2})
	assert.Equal(t, []string{"a", "d", "d/b", "d/e"}, got.keys())
	assert.True(t, got.entries["d"].Expanded)
	assert.False(t, got.entries["d/e"].Expanded)

	got = drain(t, root, []string{root}, WalkOptions{MaxDepth: 0})
	assert.Empty(t, got.keys())
}

func TestStream_HiddenFiltering(t *testing.T) {
	root := makeTree(t, "visible", ".hidden", ".config/inside", "dir/.dot")

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited})
	assert.Equal(t, []string{"dir", "visible"}, got.keys())

	for _, display := range []models.DisplayFilter{models.DisplayAlmostAll, models.DisplayAll} {
		got = drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited, Display: display})
		assert.Equal(t, []string{".config", ".config/inside", ".hidden", "dir", "dir/.dot", "visible"}, got.keys(), display.String())
	}
}

func TestStream_IgnoreGlobs(t *testing.T) {
	root := makeTree(t, "keep.go", "drop.log", "vendor/lib/x.go", "src/gen/out.go", "src/main.go")

	got := drain(t, root, []string{root}, WalkOptions{
		MaxDepth:    Unlimited,
		IgnoreGlobs: []string{"*.log", "vendor", "src/gen/**"},
	})

	assert.Equal(t, []string{"keep.go", "src", "src/gen", "src/main.go"}, got.keys())
}

func TestStream_DirectoryOnly(t *testing.T) {
	root := makeTree(t, "f", "d1/g", "d1/d2/h")

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: 1, Display: models.DisplayDirectoryOnly})
	require.Equal(t, []string{"."}, got.keys())
	assert.Equal(t, 0, got.entries["."].Depth)
	assert.Equal(t, root, got.entries["."].Name)
	assert.False(t, got.entries["."].Expanded)

	got = drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited, Display: models.DisplayDirectoryOnly})
	assert.Equal(t, []string{".", "d1", "d1/d2"}, got.keys())
	assert.True(t, got.entries["."].Expanded)
	assert.Equal(t, 2, got.entries["d1/d2"].Depth)
}

func TestStream_FileRootYieldsItself(t *testing.T) {
	root := makeTree(t, "one.txt")
	arg := filepath.Join(root, ".", "one.txt")

	got := drain(t, root, []string{arg}, WalkOptions{MaxDepth: Unlimited})

	require.Equal(t, []string{"one.txt"}, got.keys())
	e := got.entries["one.txt"]
	assert.Equal(t, 0, e.Depth)
	assert.Equal(t, arg, e.Name, "root name is the argument as typed")
	assert.Equal(t, filepath.Join(root, "one.txt"), e.Path)
}

func TestStream_MultipleRoots(t *testing.T) {
	root := makeTree(t, "a/x", "b/y", "c.txt")

	got := drain(t, root, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b"),
		filepath.Join(root, "c.txt"),
	}, WalkOptions{MaxDepth: 1})

	assert.Equal(t, []string{"a/x", "b/y", "c.txt"}, got.keys())
	assert.Equal(t, 1, got.entries["a/x"].Depth)
	assert.Equal(t, 0, got.entries["c.txt"].Depth)
}

func TestStream_MissingRootIsTraversalError(t *testing.T) {
	root := makeTree(t, "present")
	missing := filepath.Join(root, "missing")

	got := drain(t, root, []string{missing, root}, WalkOptions{MaxDepth: 1})

	assert.Equal(t, []string{"present"}, got.keys())
	require.Len(t, got.errs, 1)
	var terr *models.TraversalError
	require.ErrorAs(t, got.errs[0], &terr)
	assert.Equal(t, missing, terr.Path)
	assert.ErrorIs(t, got.errs[0], os.ErrNotExist)
}

func TestStream_UnreadableDirectoryContinues(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := makeTree(t, "ok/file", "locked/secret")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited})

	assert.Equal(t, []string{"locked", "ok", "ok/file"}, got.keys())
	require.Len(t, got.errs, 1)
	var terr *models.TraversalError
	require.ErrorAs(t, got.errs[0], &terr)
	assert.Equal(t, locked, terr.Path)
}

func TestStream_SingleWorkerWalksInline(t *testing.T) {
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, filepath.Join("d"+string(rune('a'+i)), "sub", "f"))
	}
	root := makeTree(t, paths...)

	got := drain(t, root, []string{root}, WalkOptions{MaxDepth: Unlimited, Workers: 1, Buffer: 1})

	assert.Len(t, got.entries, 60)
}

func TestStream_CancelStopsWalk(t *testing.T) {
	root := makeTree(t, "a/b/c", "d/e/f", "g")
	ctx, cancel := context.WithCancel(context.Background())

	s := NewStream(ctx, []string{root}, WalkOptions{MaxDepth: Unlimited, Buffer: 1})
	cancel()

	// Any mix of buffered entries may come first; the stream must end.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("stream did not stop after cancel")
		default:
		}
		_, err := s.Next(ctx)
		if err != nil && !isTraversal(err) {
			assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, io.EOF), err)
			break
		}
	}
	s.Close()
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	root := makeTree(t, "a", "b")
	s := NewStream(context.Background(), []string{root}, WalkOptions{MaxDepth: 1})
	s.Close()
	s.Close()

	_, err := s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func isTraversal(err error) bool {
	var terr *models.TraversalError
	return errors.As(err, &terr)
}
