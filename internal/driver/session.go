package driver

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cbgen/internal/diag"
	"cbgen/internal/emit"
	"cbgen/internal/layout"
	"cbgen/internal/observ"
	"cbgen/internal/parser"
	"cbgen/internal/project"
	"cbgen/internal/project/dag"
	"cbgen/internal/source"
	"cbgen/internal/trace"
	"cbgen/internal/types"
)

// Phase names reported through PhaseObserver and the timer.
const (
	PhaseScan     = "scan"
	PhaseRegister = "register"
	PhaseResolve  = "resolve"
	PhaseEmit     = "emit"
	PhaseWrite    = "write"
)

type Options struct {
	Jobs           int
	MaxDiagnostics int

	Handles   *types.HandleTable // nil means the built-in handles
	Constants map[string]uint64

	Suffix string
	// InputRoot and OutputDir relocate outputs: input InputRoot/a/x.h becomes
	// OutputDir/a/x<suffix>. An empty OutputDir writes next to each input.
	InputRoot     string
	OutputDir     string
	Aliases       bool
	StaticAsserts bool
	Banner        bool

	DryRun       bool
	Cache        *DiskCache
	ConfigDigest project.Digest
	Observer     PhaseObserver
}

// Output is one generated header.
type Output struct {
	Input   string
	Path    string
	Content []byte // nil for cache hits
	Cached  bool   // inputs unchanged since the last write; nothing rendered
	Written bool
	key     project.Digest
	deps    []string
}

// Session carries one generation run through its stages. Each stage reports
// into Bag and returns false (or an error for I/O and cancellation) when the
// run cannot continue.
type Session struct {
	opts     Options
	FileSet  *source.FileSet
	Files    []ScanResult
	Registry *layout.Registry
	Bag      *diag.Bag
	Outputs  []Output
	Timer    *observ.Timer

	// defines digests the merged #define table; every cache key covers it
	// since any input may supply an array length.
	defines project.Digest
}

func NewSession(opts Options) *Session {
	if opts.Suffix == "" {
		opts.Suffix = emit.DefaultSuffix
	}
	if opts.Handles == nil {
		opts.Handles = types.MustHandleTable(types.DefaultHandles)
	}
	return &Session{
		opts:     opts,
		FileSet:  source.NewFileSet(),
		Registry: layout.NewRegistry(opts.Handles),
		Bag:      diag.NewBag(opts.MaxDiagnostics),
		Timer:    observ.NewTimer(),
	}
}

func (s *Session) reporter() diag.Reporter {
	return diag.BagReporter{Bag: s.Bag}
}

// phase wraps a stage with the timer, the observer and a trace span. fn gets
// a context carrying the span.
func (s *Session) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := trace.Start(ctx, trace.ScopePhase, name)
	idx := s.Timer.Begin(name)
	if s.opts.Observer != nil {
		s.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	note := ""
	if err != nil {
		note = err.Error()
	}
	s.Timer.End(idx, note)
	span.End(err)
	if s.opts.Observer != nil {
		s.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	}
	Logger().Debug("phase done", zap.String("phase", name), zap.Duration("elapsed", elapsed), zap.Error(err))
	return err
}

// Scan loads and scans files in parallel. Diagnostics are merged into Bag in
// file order.
func (s *Session) Scan(ctx context.Context, files []string) error {
	return s.phase(ctx, PhaseScan, func(ctx context.Context) error {
		fs, results, err := ScanFiles(ctx, files, s.opts.MaxDiagnostics, s.opts.Jobs)
		s.FileSet = fs
		s.Files = results
		for _, r := range results {
			if r.Bag != nil {
				s.Bag.Merge(r.Bag)
			}
		}
		return err
	})
}

// Register binds array lengths and declares every struct in file order.
func (s *Session) Register(ctx context.Context) bool {
	_ = s.phase(ctx, PhaseRegister, func(ctx context.Context) error {
		parsed := make([]*parser.Result, 0, len(s.Files))
		for _, f := range s.Files {
			if f.Result != nil {
				parsed = append(parsed, f.Result)
			}
		}
		consts := parser.CollectDefines(parsed, s.opts.Constants, s.reporter())
		s.defines = definesDigest(consts)
		for _, res := range parsed {
			parser.Bind(res, consts, s.reporter())
		}
		if s.Bag.HasErrors() {
			return nil
		}
		for _, res := range parsed {
			for _, decl := range res.Structs {
				if _, err := s.Registry.Declare(decl); err != nil {
					ReportLayoutError(s.reporter(), s.Registry, err)
				}
			}
		}
		return nil
	})
	return !s.Bag.HasErrors()
}

// Resolve lays out every registered struct. The first layout error ends the
// run.
func (s *Session) Resolve(ctx context.Context) bool {
	_ = s.phase(ctx, PhaseResolve, func(ctx context.Context) error {
		if err := s.resolver(ctx).ResolveAll(); err != nil {
			ReportLayoutError(s.reporter(), s.Registry, err)
		}
		return nil
	})
	return !s.Bag.HasErrors()
}

// ResolveNames lays out only the named structs and what they contain. A name
// that is not registered is reported as an unresolved reference.
func (s *Session) ResolveNames(ctx context.Context, names []string) bool {
	_ = s.phase(ctx, PhaseResolve, func(ctx context.Context) error {
		r := s.resolver(ctx)
		for _, name := range names {
			if err := r.Resolve(name); err != nil {
				ReportLayoutError(s.reporter(), s.Registry, err)
				return nil
			}
		}
		return nil
	})
	return !s.Bag.HasErrors()
}

func (s *Session) resolver(ctx context.Context) *layout.Resolver {
	r := layout.NewResolver(s.Registry)
	r.OnResolved = func(def *types.StructDef) {
		trace.Struct(ctx, def.Name, def.Size, len(def.Fields))
		Logger().Debug("struct resolved",
			zap.String("struct", def.Name),
			zap.Uint32("size", def.Size),
			zap.Int("fields", len(def.Fields)))
	}
	return r
}

// Emit renders every scanned file. Files whose digest matches the cache and
// whose output is still on disk are not rendered again.
func (s *Session) Emit(ctx context.Context) error {
	return s.phase(ctx, PhaseEmit, func(ctx context.Context) error {
		inputs := make([]string, 0, len(s.Files))
		for _, f := range s.Files {
			inputs = append(inputs, f.Path)
		}
		em := emit.New(s.Registry, emit.Options{
			Aliases:       s.opts.Aliases,
			StaticAsserts: s.opts.StaticAsserts,
			Banner:        s.opts.Banner,
			Rewrite:       emit.IncludeRewriter(inputs, s.opts.Suffix),
		})
		srcDeps := s.sourceDeps()

		s.Outputs = s.Outputs[:0]
		for _, f := range s.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.Result == nil {
				continue
			}
			out := Output{
				Input: f.Path,
				Path:  s.OutputPath(f.Path),
				deps:  srcDeps[f.Path],
			}
			out.key = s.cacheKey(f.Result.File, out.Path, out.deps)
			if s.cacheHit(out) {
				out.Cached = true
				Logger().Debug("cache hit", zap.String("input", f.Path))
				s.Outputs = append(s.Outputs, out)
				continue
			}
			content, err := em.File(f.Result)
			if err != nil {
				return err
			}
			out.Content = content
			s.Outputs = append(s.Outputs, out)
		}
		return nil
	})
}

// Write stores rendered outputs atomically and records them in the cache.
// Unchanged files are left alone. In dry-run mode nothing is written.
func (s *Session) Write(ctx context.Context) error {
	return s.phase(ctx, PhaseWrite, func(ctx context.Context) error {
		if s.opts.DryRun {
			return nil
		}
		for i := range s.Outputs {
			out := &s.Outputs[i]
			if out.Cached {
				continue
			}
			changed, err := writeIfChanged(out.Path, out.Content)
			if err != nil {
				s.Bag.Add(diag.NewError(diag.IOWriteFailed, source.Span{}, fmt.Sprintf("failed to write %s: %v", out.Path, err)))
				return err
			}
			out.Written = changed
			Logger().Info("generated", zap.String("output", out.Path), zap.Bool("changed", changed))
			if err := s.opts.Cache.Put(out.key, &DiskPayload{
				Input:      out.Input,
				Output:     out.Path,
				OutputHash: project.DigestOf(out.Content),
				DepPaths:   out.deps,
				Written:    time.Now(),
			}); err != nil {
				Logger().Warn("cache put failed", zap.String("output", out.Path), zap.Error(err))
			}
		}
		return nil
	})
}

// OutputPath maps an input header to its generated path.
func (s *Session) OutputPath(input string) string {
	if s.opts.OutputDir == "" {
		return emit.OutputPath(input, s.opts.Suffix)
	}
	rel, err := filepath.Rel(s.opts.InputRoot, input)
	if err != nil || filepath.IsAbs(rel) || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		rel = filepath.Base(input)
	}
	return filepath.Join(s.opts.OutputDir, emit.OutputPath(rel, s.opts.Suffix))
}

func (s *Session) sourceDeps() map[string][]string {
	defs := s.Registry.All()
	idx := dag.BuildIndex(defs)
	g, slots := dag.BuildGraph(idx, defs, nil)
	return dag.SourceDeps(g, slots)
}

func (s *Session) cacheKey(file *source.File, outPath string, deps []string) project.Digest {
	parts := []project.Digest{s.opts.ConfigDigest, s.defines, project.DigestOf([]byte(outPath))}
	for _, dep := range deps {
		if f, ok := s.FileSet.Lookup(dep); ok {
			parts = append(parts, f.Hash)
		}
	}
	return project.Combine(file.Hash, parts...)
}

func definesDigest(consts parser.Constants) project.Digest {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(consts)) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(consts[name], 10))
		b.WriteByte('\n')
	}
	return project.DigestOf([]byte(b.String()))
}

func (s *Session) cacheHit(out Output) bool {
	if s.opts.Cache == nil || s.opts.DryRun {
		return false
	}
	var payload DiskPayload
	ok, err := s.opts.Cache.Get(out.key, &payload)
	if err != nil {
		Logger().Warn("cache read failed", zap.String("input", out.Input), zap.Error(err))
		return false
	}
	if !ok || payload.Output != out.Path {
		return false
	}
	hash, err := fileDigest(out.Path)
	return err == nil && hash == payload.OutputHash
}

// Generate runs every stage over files. It returns an error only for I/O
// failures and cancellation; layout and syntax problems end up in Bag.
func Generate(ctx context.Context, files []string, opts Options) (*Session, error) {
	s := NewSession(opts)
	if err := s.Scan(ctx, files); err != nil {
		return s, err
	}
	if s.Bag.HasErrors() || !s.Register(ctx) || !s.Resolve(ctx) {
		return s, nil
	}
	if err := s.Emit(ctx); err != nil {
		return s, err
	}
	if err := s.Write(ctx); err != nil {
		return s, err
	}
	return s, nil
}
