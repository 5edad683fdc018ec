// Package sfc is the built-in analysis engine. It splits component files
// into their blocks with tree-sitter, derives one virtual script per
// <script> block, and reports syntax errors and unresolved relative imports
// at their positions in the original file.
//
// Results are cached per file and script version, so a project version bump
// only re-analyzes files whose content changed.
package sfc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/jward/vuetsc"
)

// Diagnostic codes.
const (
	CodeFileNotFound    = "SFC6053"
	CodeScriptSyntax    = "SFC1005"
	CodeTemplateSyntax  = "SFC1006"
	CodeModuleNotFound  = "SFC2307"
	CodeUnsupportedLang = "SFC1007"
)

// ErrCancelled is returned when the host's cancellation token fires.
var ErrCancelled = errors.New("sfc: operation cancelled")

// Factory creates Services. It implements vuetsc.LanguageServiceFactory.
type Factory struct {
	workers int
	logger  *log.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithWorkers bounds how many files are analyzed concurrently.
func WithWorkers(n int) Option {
	return func(f *Factory) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger for analysis progress.
func WithLogger(l *log.Logger) Option {
	return func(f *Factory) {
		f.logger = l
	}
}

// NewFactory creates a Factory. Workers default to GOMAXPROCS.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{workers: goruntime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = vuetsc.Logger()
	}
	return f
}

var _ vuetsc.LanguageServiceFactory = (*Factory)(nil)

// NewLanguageService binds a Service to host and fsys.
func (f *Factory) NewLanguageService(host vuetsc.LanguageServiceHost, fsys vuetsc.FileSystem, vueOpts *vuetsc.VueCompilerOptions) (vuetsc.LanguageService, error) {
	if host == nil || fsys == nil {
		return nil, fmt.Errorf("sfc: language service needs a host and a filesystem")
	}
	exts := vueOpts.ComponentExtensions()
	return &Service{
		host:       host,
		components: exts,
		resolver:   &resolver{fsys: fsys, components: exts},
		workers:    f.workers,
		logger:     f.logger,
		results:    make(map[string]fileResult),
	}, nil
}

// Service analyzes the files of one program context.
type Service struct {
	host       vuetsc.LanguageServiceHost
	components []string
	resolver   *resolver
	workers    int
	logger     *log.Logger

	mu       sync.Mutex
	results  map[string]fileResult
	analyzed atomic.Int64
}

type fileResult struct {
	version string
	diags   []vuetsc.Diagnostic
}

var (
	_ vuetsc.LanguageService     = (*Service)(nil)
	_ vuetsc.VirtualFileProvider = (*Service)(nil)
)

// Program returns a view of the host's current root files.
func (s *Service) Program() vuetsc.EngineProgram {
	return &program{svc: s}
}

// Analyzed returns how many file analyses have run, cache hits excluded.
func (s *Service) Analyzed() int64 {
	return s.analyzed.Load()
}

// IsComponent reports whether fileName is parsed as a component.
func (s *Service) IsComponent(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range s.components {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// VirtualFiles returns the virtual scripts derived from fileName. A plain
// script file is its own virtual file.
func (s *Service) VirtualFiles(fileName string) ([]vuetsc.VirtualFile, error) {
	snap := s.host.ScriptSnapshot(fileName)
	if snap == nil {
		return nil, fmt.Errorf("sfc: file not found: %s", fileName)
	}
	if !s.IsComponent(fileName) {
		return []vuetsc.VirtualFile{{Name: fileName, Text: snap.Text()}}, nil
	}
	comp, err := ParseComponent(context.Background(), []byte(snap.Text()))
	if err != nil {
		return nil, err
	}
	var out []vuetsc.VirtualFile
	for _, b := range comp.Scripts() {
		out = append(out, vuetsc.VirtualFile{Name: b.VirtualName(fileName), Text: b.Content})
	}
	return out, nil
}

// diagnostics returns the cached result for fileName when its script
// version is unchanged, otherwise analyzes it.
func (s *Service) diagnostics(ctx context.Context, fileName string) ([]vuetsc.Diagnostic, error) {
	snap := s.host.ScriptSnapshot(fileName)
	if snap == nil {
		return []vuetsc.Diagnostic{{
			FileName: fileName,
			Line:     1,
			Column:   1,
			Code:     CodeFileNotFound,
			Message:  fmt.Sprintf("File '%s' not found.", fileName),
		}}, nil
	}
	version := s.host.ScriptVersion(fileName)

	s.mu.Lock()
	cached, ok := s.results[fileName]
	s.mu.Unlock()
	if ok && cached.version == version {
		return cached.diags, nil
	}

	diags, err := s.analyze(ctx, fileName, []byte(snap.Text()))
	if err != nil {
		return nil, err
	}
	s.analyzed.Add(1)

	s.mu.Lock()
	s.results[fileName] = fileResult{version: version, diags: diags}
	s.mu.Unlock()
	return diags, nil
}

func (s *Service) analyze(ctx context.Context, fileName string, src []byte) ([]vuetsc.Diagnostic, error) {
	if s.IsComponent(fileName) {
		return s.analyzeComponent(ctx, fileName, src)
	}
	lang, ok := LanguageForFile(fileName)
	if !ok {
		return nil, nil
	}
	return s.analyzeScript(ctx, fileName, lang, src, sitter.Point{})
}

func (s *Service) analyzeComponent(ctx context.Context, fileName string, src []byte) ([]vuetsc.Diagnostic, error) {
	comp, err := ParseComponent(ctx, src)
	if err != nil {
		return nil, err
	}
	var diags []vuetsc.Diagnostic
	for _, e := range comp.Errors {
		diags = append(diags, newDiagnostic(fileName, e.Point, CodeTemplateSyntax, e.Message))
	}
	for _, b := range comp.Scripts() {
		if _, ok := ScriptGrammar(b.Lang); !ok {
			diags = append(diags, newDiagnostic(fileName, b.Start, CodeUnsupportedLang,
				fmt.Sprintf("Script language '%s' is not supported.", b.Lang)))
			continue
		}
		d, err := s.analyzeScript(ctx, fileName, b.Lang, []byte(b.Content), b.Start)
		if err != nil {
			return nil, err
		}
		diags = append(diags, d...)
	}
	sortDiagnostics(diags)
	return diags, nil
}

func (s *Service) analyzeScript(ctx context.Context, fileName, lang string, src []byte, start sitter.Point) ([]vuetsc.Diagnostic, error) {
	info, err := AnalyzeScript(ctx, lang, src)
	if err != nil {
		return nil, err
	}
	var diags []vuetsc.Diagnostic
	for _, e := range info.Errors {
		diags = append(diags, newDiagnostic(fileName, shift(e.Point, start), CodeScriptSyntax, e.Message))
	}
	for _, imp := range info.Imports {
		if !isRelative(imp.Specifier) {
			continue
		}
		if s.resolver.resolve(fileName, imp.Specifier) == "" {
			diags = append(diags, newDiagnostic(fileName, shift(imp.Point, start), CodeModuleNotFound,
				fmt.Sprintf("Cannot find module '%s' or its corresponding type declarations.", imp.Specifier)))
		}
	}
	return diags, nil
}

func newDiagnostic(fileName string, p sitter.Point, code, msg string) vuetsc.Diagnostic {
	return vuetsc.Diagnostic{
		FileName: fileName,
		Line:     int(p.Row) + 1,
		Column:   int(p.Column) + 1,
		Severity: vuetsc.SeverityError,
		Code:     code,
		Message:  msg,
	}
}

func sortDiagnostics(diags []vuetsc.Diagnostic) {
	slices.SortStableFunc(diags, func(a, b vuetsc.Diagnostic) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})
}

// program is the engine's view at the time Diagnostics is called.
type program struct {
	svc *Service
}

func (p *program) RootFileNames() []string {
	return p.svc.host.ScriptFileNames()
}

// Diagnostics analyzes every root file on a bounded worker pool. Results keep
// root file order.
func (p *program) Diagnostics(ctx context.Context) ([]vuetsc.Diagnostic, error) {
	names := p.RootFileNames()
	perFile := make([][]vuetsc.Diagnostic, len(names))
	token := p.svc.host.CancellationToken()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.svc.workers)
	for i, name := range names {
		g.Go(func() error {
			if token.IsCancellationRequested() {
				return ErrCancelled
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			diags, err := p.svc.diagnostics(gctx, name)
			if err != nil {
				return fmt.Errorf("sfc: %s: %w", filepath.Base(name), err)
			}
			perFile[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []vuetsc.Diagnostic
	for _, d := range perFile {
		out = append(out, d...)
	}
	p.svc.logger.Debug("diagnostics", "files", len(names), "problems", len(out), "version", p.svc.host.ProjectVersion())
	return out, nil
}
