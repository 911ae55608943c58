// Package fileutil is the raw entry source for kgls: a parallel directory
// walker exposed to its consumer as one pull-based stream.
//
// # Stream
//
// NewStream starts walking every root immediately. Directories are read by a
// bounded pool of goroutines; every discovered path is pushed through a
// single buffered channel. The consumer pulls one entry at a time:
//
//	stream := fileutil.NewStream(ctx, []string{"."}, fileutil.WalkOptions{MaxDepth: 1})
//	defer stream.Close()
//	for {
//	    entry, err := stream.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    var terr *models.TraversalError
//	    if errors.As(err, &terr) {
//	        // unreadable path, keep going
//	        continue
//	    }
//	    ...
//	}
//
// Arrival order depends on goroutine scheduling and is not meaningful.
//
// # Roots and depth
//
// A directory root yields its contents: direct children at depth 1, their
// children at depth 2, up to MaxDepth. A file root yields itself at depth 0.
// With DisplayDirectoryOnly every root yields itself at depth 0 and only
// directories are yielded below it.
//
// # Filtering
//
// Dot-names are skipped unless the display filter is almost-all or all.
// Ignore globs (doublestar syntax, ** allowed) are matched against the base
// name and against the slash-separated path relative to the root. A skipped
// directory is not descended.
//
// # Errors
//
// Unreadable directories and entries that cannot be stat'ed are delivered as
// *models.TraversalError values in place of an entry. The walk continues with
// their siblings.
package fileutil
