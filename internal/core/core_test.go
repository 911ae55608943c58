package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/kgls/internal/enrich"
	"github.com/harrison/kgls/internal/fileutil"
	"github.com/harrison/kgls/internal/models"
	"github.com/harrison/kgls/internal/sorter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	entry models.RawEntry
	err   error
}

// fakeSource replays a fixed sequence, then returns io.EOF.
type fakeSource struct {
	steps  []step
	opts   fileutil.WalkOptions
	roots  []string
	closed bool
}

func (f *fakeSource) Next(ctx context.Context) (models.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.RawEntry{}, err
	}
	if len(f.steps) == 0 {
		return models.RawEntry{}, io.EOF
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	return s.entry, s.err
}

func (f *fakeSource) Close() { f.closed = true }

func (f *fakeSource) factory() SourceFactory {
	return func(_ context.Context, roots []string, opts fileutil.WalkOptions) Source {
		f.roots = roots
		f.opts = opts
		return f
	}
}

// stubEnricher builds records without touching the filesystem.
// Names ending in "/" are expanded directories.
type stubEnricher struct{ calls int }

func (s *stubEnricher) Enrich(_ context.Context, raw models.RawEntry) *models.Record {
	s.calls++
	rec := &models.Record{Path: raw.Path, Name: filepath.Base(raw.Path), Depth: raw.Depth, Type: models.FileTypeFile}
	if raw.Expanded {
		rec.Type = models.FileTypeDirectory
		rec.Children = []*models.Record{}
	}
	return rec
}

type captureRenderer struct {
	flat  []*models.Record
	roots []*models.Record
	tree  bool
	err   error
}

func (c *captureRenderer) RenderFlat(_ io.Writer, records []*models.Record) error {
	c.flat = records
	return c.err
}

func (c *captureRenderer) RenderTree(_ io.Writer, roots []*models.Record) error {
	c.tree = true
	c.roots = roots
	return c.err
}

type captureLogger struct {
	trace, debug, warn []string
	summary            *models.RunStats
}

func (l *captureLogger) LogTrace(m string) { l.trace = append(l.trace, m) }
func (l *captureLogger) LogDebug(m string) { l.debug = append(l.debug, m) }
func (l *captureLogger) LogWarn(m string)  { l.warn = append(l.warn, m) }
func (l *captureLogger) LogSummary(s models.RunStats) {
	l.summary = &s
}

func statAll(string) (fs.FileInfo, error) { return nil, nil }

type harness struct {
	src      *fakeSource
	enricher *stubEnricher
	renderer *captureRenderer
	log      *captureLogger
	stderr   *bytes.Buffer
}

func newHarness(steps ...step) *harness {
	return &harness{
		src:      &fakeSource{steps: steps},
		enricher: &stubEnricher{},
		renderer: &captureRenderer{},
		log:      &captureLogger{},
		stderr:   &bytes.Buffer{},
	}
}

func (h *harness) core(opts Options) *Core {
	return New(opts, Dependencies{
		Source:   h.src.factory(),
		Enricher: h.enricher,
		Renderer: h.renderer,
		Logger:   h.log,
		Stdout:   io.Discard,
		Stderr:   h.stderr,
		Stat:     statAll,
	})
}

func raw(path string, depth int, dir bool) step {
	return step{entry: models.RawEntry{Path: path, Name: filepath.Base(path), Depth: depth, Expanded: dir}}
}

func names(records []*models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

var byName = sorter.Criteria{Column: models.SortName, DirGrouping: models.DirGroupingFirst}

func TestRun_TreeEndToEnd(t *testing.T) {
	h := newHarness(
		raw("/tmp/x/file1", 1, false),
		raw("/tmp/x/dir1", 1, true),
	)

	sev := h.core(Options{Layout: models.LayoutTree, Sort: byName}).Run(context.Background(), []string{"/tmp/x"})

	assert.Equal(t, models.SeverityNone, sev)
	require.True(t, h.renderer.tree)
	require.Equal(t, []string{"dir1", "file1"}, names(h.renderer.roots))
	assert.NotNil(t, h.renderer.roots[0].Children)
	assert.Empty(t, h.renderer.roots[0].Children)
	assert.Nil(t, h.renderer.roots[1].Children)
	assert.Empty(t, h.log.warn)
	assert.Empty(t, h.stderr.String())
	assert.True(t, h.src.closed)
}

func TestRun_TreeOrphanIsPromotedAndWarned(t *testing.T) {
	h := newHarness(
		raw("/tmp/x/other.txt", 1, false),
		raw("/tmp/x/sub/leaf.txt", 2, false),
	)

	sev := h.core(Options{Layout: models.LayoutTree, Sort: byName}).Run(context.Background(), []string{"/tmp/x"})

	assert.Equal(t, models.SeverityNone, sev, "orphans do not escalate")
	assert.Equal(t, []string{"leaf.txt", "other.txt"}, names(h.renderer.roots))
	require.Len(t, h.log.warn, 1)
	assert.Equal(t, "Entry '/tmp/x/sub/leaf.txt' orphaned (parent '/tmp/x/sub' was filtered)", h.log.warn[0])
	require.NotNil(t, h.log.summary)
	assert.Equal(t, 1, h.log.summary.Orphans)
}

func TestRun_TreeSortsEveryLevel(t *testing.T) {
	h := newHarness(
		raw("/r/b", 1, true),
		raw("/r/b/z", 2, false),
		raw("/r/a", 1, false),
		raw("/r/b/y", 2, false),
	)

	h.core(Options{Layout: models.LayoutTree, Sort: sorter.Criteria{Column: models.SortName}}).
		Run(context.Background(), []string{"/r"})

	require.Equal(t, []string{"a", "b"}, names(h.renderer.roots))
	assert.Equal(t, []string{"y", "z"}, names(h.renderer.roots[1].Children))
}

func TestRun_TreeDropsDuplicatePaths(t *testing.T) {
	h := newHarness(
		raw("/r/d", 1, true),
		raw("/r/d/f", 2, false),
		raw("/r/d/f", 1, false),
	)

	h.core(Options{Layout: models.LayoutTree}).Run(context.Background(), []string{"/r", "/r/d"})

	require.Len(t, h.renderer.roots, 1)
	assert.Equal(t, 2, h.renderer.roots[0].Count())
	require.NotNil(t, h.log.summary)
	assert.Equal(t, 2, h.log.summary.Entries)
	assert.Len(t, h.log.trace, 3)
}

func TestRun_FlatSortsOneLevel(t *testing.T) {
	h := newHarness(
		raw("/r/c", 1, false),
		raw("/r/a", 1, false),
		raw("/r/b", 1, true),
	)

	sev := h.core(Options{Layout: models.LayoutGrid, Sort: byName}).Run(context.Background(), []string{"/r"})

	assert.Equal(t, models.SeverityNone, sev)
	assert.False(t, h.renderer.tree)
	assert.Equal(t, []string{"b", "a", "c"}, names(h.renderer.flat))
}

func TestRun_DepthBound(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"flat without recursion", Options{Layout: models.LayoutGrid, Recursion: Recursion{Depth: 5}}, 1},
		{"flat recursive", Options{Layout: models.LayoutOneLine, Recursion: Recursion{Enabled: true, Depth: 3}}, 3},
		{"flat recursive unlimited", Options{Layout: models.LayoutGrid, Recursion: Recursion{Enabled: true}}, fileutil.Unlimited},
		{"tree uses depth", Options{Layout: models.LayoutTree, Recursion: Recursion{Depth: 2}}, 2},
		{"tree unlimited", Options{Layout: models.LayoutTree}, fileutil.Unlimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.core(tt.opts).Run(context.Background(), []string{"."})
			assert.Equal(t, tt.want, h.src.opts.MaxDepth)
		})
	}
}

func TestRun_PassesWalkOptions(t *testing.T) {
	h := newHarness()
	h.core(Options{
		Display:     models.DisplayAlmostAll,
		IgnoreGlobs: []string{"*.o"},
		Workers:     3,
	}).Run(context.Background(), []string{"a", "b"})

	assert.Equal(t, []string{"a", "b"}, h.src.roots)
	assert.Equal(t, models.DisplayAlmostAll, h.src.opts.Display)
	assert.Equal(t, []string{"*.o"}, h.src.opts.IgnoreGlobs)
	assert.Equal(t, 3, h.src.opts.Workers)
}

func TestRun_InvalidRoots(t *testing.T) {
	h := newHarness(raw("/ok/f", 1, false))
	c := h.core(Options{})
	c.deps.Stat = func(p string) (fs.FileInfo, error) {
		if p == "/missing" {
			return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
		}
		return nil, nil
	}

	sev := c.Run(context.Background(), []string{"/missing", "/ok"})

	assert.Equal(t, models.SeverityMinor, sev)
	assert.Equal(t, "kgls: cannot access '/missing': No such file or directory\n", h.stderr.String())
	assert.Equal(t, []string{"/ok"}, h.src.roots)
	assert.Equal(t, []string{"f"}, names(h.renderer.flat))
}

func TestRun_NoValidRootsReturnsEarly(t *testing.T) {
	h := newHarness(raw("/never", 1, false))
	c := h.core(Options{})
	c.deps.Stat = func(p string) (fs.FileInfo, error) { return nil, fs.ErrNotExist }

	sev := c.Run(context.Background(), []string{"/a", "/b"})

	assert.Equal(t, models.SeverityMinor, sev)
	assert.Nil(t, h.src.roots, "source must not be opened")
	assert.Nil(t, h.renderer.flat)
	assert.Zero(t, h.enricher.calls)
	assert.Equal(t, 2, bytes.Count(h.stderr.Bytes(), []byte("\n")))
}

func TestRun_TraversalErrorsAreMinor(t *testing.T) {
	h := newHarness(
		raw("/r/a", 1, false),
		step{err: &models.TraversalError{Path: "/r/locked", Err: &fs.PathError{Op: "open", Path: "/r/locked", Err: fs.ErrPermission}}},
		step{err: errors.New("walker hiccup")},
		raw("/r/b", 1, false),
	)

	sev := h.core(Options{Sort: byName}).Run(context.Background(), []string{"/r"})

	assert.Equal(t, models.SeverityMinor, sev)
	assert.Equal(t, []string{"a", "b"}, names(h.renderer.flat))
	assert.Contains(t, h.stderr.String(), "kgls: cannot access '/r/locked': permission denied\n")
	assert.Contains(t, h.stderr.String(), "kgls: walker hiccup\n")
	require.NotNil(t, h.log.summary)
	assert.Equal(t, 2, h.log.summary.Errors)
	assert.Equal(t, 2, h.log.summary.Entries)
}

func TestRun_CancellationRendersPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(raw("/r/a", 1, false), raw("/r/b", 1, false))
	c := h.core(Options{})
	c.deps.Enricher = enricherFunc(func(ctx context.Context, r models.RawEntry) *models.Record {
		cancel()
		return h.enricher.Enrich(ctx, r)
	})

	sev := c.Run(ctx, []string{"/r"})

	assert.Equal(t, models.SeverityNone, sev, "ended early is not a failure")
	assert.Equal(t, []string{"a"}, names(h.renderer.flat))
	assert.True(t, h.src.closed)
}

func TestRun_RenderErrorDoesNotEscalate(t *testing.T) {
	h := newHarness(raw("/r/a", 1, false))
	h.renderer.err = errors.New("write |1: broken pipe")

	sev := h.core(Options{}).Run(context.Background(), []string{"/r"})

	assert.Equal(t, models.SeverityNone, sev)
	assert.Contains(t, h.log.debug, "render: write |1: broken pipe")
}

type enricherFunc func(context.Context, models.RawEntry) *models.Record

func (f enricherFunc) Enrich(ctx context.Context, r models.RawEntry) *models.Record { return f(ctx, r) }

func TestRun_EnricherSeesRunContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "run")
	h := newHarness(raw("/r/a", 1, false))
	c := h.core(Options{})
	var got any
	c.deps.Enricher = enricherFunc(func(ctx context.Context, r models.RawEntry) *models.Record {
		got = ctx.Value(key{})
		return h.enricher.Enrich(ctx, r)
	})

	c.Run(ctx, []string{"/r"})

	assert.Equal(t, "run", got)
}

func TestRun_TraceLogsEveryEntry(t *testing.T) {
	h := newHarness(raw("/r/a", 1, false), raw("/r/d", 1, true), raw("/r/d/e", 2, false))

	h.core(Options{Layout: models.LayoutTree}).Run(context.Background(), []string{"/r"})

	assert.Equal(t, []string{
		"entry /r/a (depth 1)",
		"entry /r/d (depth 1)",
		"entry /r/d/e (depth 2)",
	}, h.log.trace)
}

// The remaining tests run the real walker and enrichment on a temp dir.

type realHarness struct {
	renderer *captureRenderer
	log      *captureLogger
	stderr   *bytes.Buffer
}

func runReal(t *testing.T, opts Options, roots ...string) (*realHarness, models.Severity) {
	t.Helper()
	h := &realHarness{renderer: &captureRenderer{}, log: &captureLogger{}, stderr: &bytes.Buffer{}}
	c := New(opts, Dependencies{
		Enricher: enrich.New(enrich.Options{}),
		Renderer: h.renderer,
		Logger:   h.log,
		Stdout:   io.Discard,
		Stderr:   h.stderr,
	})
	return h, c.Run(context.Background(), roots)
}

func TestRun_WalkerTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file1"), nil, 0o644))

	h, sev := runReal(t, Options{Layout: models.LayoutTree, Sort: byName}, root)

	assert.Equal(t, models.SeverityNone, sev)
	require.Equal(t, []string{"dir1", "file1"}, names(h.renderer.roots))
	assert.NotNil(t, h.renderer.roots[0].Children)
	assert.Empty(t, h.renderer.roots[0].Children)
	assert.Nil(t, h.renderer.roots[1].Children)
}

func TestRun_WalkerIgnoredDirectoryPrunesSubtree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "leaf.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.txt"), nil, 0o644))

	h, sev := runReal(t, Options{Layout: models.LayoutTree, Sort: byName, IgnoreGlobs: []string{"sub"}}, root)

	assert.Equal(t, models.SeverityNone, sev)
	assert.Equal(t, []string{"other.txt"}, names(h.renderer.roots))
	assert.Empty(t, h.log.warn)
}

func TestRun_WalkerMissingRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), nil, 0o644))
	missing := filepath.Join(root, "nope")

	h, sev := runReal(t, Options{Sort: byName}, missing, root)

	assert.Equal(t, models.SeverityMinor, sev)
	assert.Equal(t, "kgls: cannot access '"+missing+"': No such file or directory\n", h.stderr.String())
	assert.Equal(t, []string{"f"}, names(h.renderer.flat))
}

func TestRun_WalkerRecursiveSameNamesHaveStableOrder(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, d, "README"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, d, "sub", "README"), nil, 0o644))
	}
	opts := Options{
		Layout:    models.LayoutOneLine,
		Recursion: Recursion{Enabled: true},
		Sort:      byName,
		Workers:   8,
	}

	var want []string
	for i := 0; i < 10; i++ {
		h, sev := runReal(t, opts, root)
		require.Equal(t, models.SeverityNone, sev)
		got := make([]string, len(h.renderer.flat))
		for j, rec := range h.renderer.flat {
			got[j] = rec.Path
		}
		if want == nil {
			want = got
			continue
		}
		require.Equal(t, want, got, "run %d", i)
	}
	require.Len(t, want, 8*4)
}
