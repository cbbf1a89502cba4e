// Package fileutil turns the paths given on the command line into the stream
// of files grape searches.
//
// It sits outside the search core: the core only needs a producer that pushes
// paths into the shared queue and closes it afterwards. Filter.Enumerate is
// that producer's body.
//
// # Filtering
//
// Globs are matched against base names with github.com/gobwas/glob:
//
//	f, err := fileutil.NewFilter(fileutil.ScanOptions{
//	    Recursive:   true,
//	    Include:     []string{"*.go", "*.md"},
//	    ExcludeDirs: []string{"vendor", "node_modules"},
//	})
//	if err != nil {
//	    return err
//	}
//	errs := f.Enumerate(roots, func(path string) {
//	    q.Push(search.WorkItem{Path: path})
//	})
//
// Hidden directories are skipped unless IncludeHidden is set. Roots that are
// files (or do not exist) are always emitted so the searcher can report them;
// directory roots are walked only in recursive mode. Non-fatal walk errors are
// returned rather than aborting the walk.
package fileutil
