package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cbgen/internal/diag"
	"cbgen/internal/emit"
	"cbgen/internal/parser"
	"cbgen/internal/source"
	"cbgen/internal/trace"
)

// ScanResult is the scanner output for one header.
type ScanResult struct {
	Path   string
	FileID source.FileID
	Result *parser.Result // nil when the file could not be loaded
	Bag    *diag.Bag
}

// ListHeaders returns every *.h under dir, sorted, skipping generated files.
func ListHeaders(dir, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".h") && !emit.IsGenerated(path, suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ScanFiles loads files into a fresh FileSet and scans them in parallel.
// Results keep the order of files. Load failures become IO diagnostics on
// the corresponding result.
func ScanFiles(ctx context.Context, files []string, maxDiagnostics, jobs int) (*source.FileSet, []ScanResult, error) {
	fileSet := source.NewFileSet()
	results := make([]ScanResult, len(files))
	if len(files) == 0 {
		return fileSet, results, nil
	}

	// FileSet is not safe for concurrent Add, so loading stays sequential.
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(maxDiagnostics)
			if loadErr, failed := loadErrors[i]; failed {
				bag.Add(diag.NewError(diag.IOLoadFailed, source.Span{}, fmt.Sprintf("failed to load %s: %v", path, loadErr)))
				results[i] = ScanResult{Path: path, Bag: bag}
				return nil
			}
			file := fileSet.Get(fileIDs[i])
			_, span := trace.Start(ctx, trace.ScopeFile, file.Path)
			res := parser.ParseFile(file, bag, parser.Options{})
			span.SetStructs(len(res.Structs)).End(nil)
			results[i] = ScanResult{
				Path:   file.Path,
				FileID: fileIDs[i],
				Result: res,
				Bag:    bag,
			}
			Logger().Debug("scanned header",
				zap.String("path", file.Path),
				zap.Int("structs", len(res.Structs)),
				zap.Int("diagnostics", bag.Len()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
