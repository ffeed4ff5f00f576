// Package importer resolves `import` statements in a parsed .rqc tree into
// a single merged raw AST (component C3), recursing into local .rqc files
// and dispatching OpenAPI documents (local or remote) to internal/openapi.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reqcraft/internal/ast"
	"reqcraft/internal/diag"
	"reqcraft/internal/openapi"
	"reqcraft/internal/parser"
)

// Settings configures network fetches for remote imports.
type Settings struct {
	FetchTimeout time.Duration
	MaxRedirects int
}

// DefaultSettings gives remote imports a 30-second fetch timeout and a
// 5-redirect cap.
func DefaultSettings() Settings {
	return Settings{FetchTimeout: 30 * time.Second, MaxRedirects: 5}
}

// Resolver walks import statements starting from a root file, producing a
// merged *ast.SourceFile. A Resolver is single-use: call Resolve once.
type Resolver struct {
	settings Settings
	visited  map[string]bool
	diags    diag.Diagnostics

	// Watched collects every local .rqc and OpenAPI path reached during the
	// walk, for the CLI/server to hand to internal/watcher.
	Watched []string
}

// New returns a Resolver with the given settings, or DefaultSettings() if
// the zero value is passed.
func New(settings Settings) *Resolver {
	if settings.FetchTimeout == 0 {
		settings.FetchTimeout = DefaultSettings().FetchTimeout
	}
	if settings.MaxRedirects == 0 {
		settings.MaxRedirects = DefaultSettings().MaxRedirects
	}
	return &Resolver{settings: settings, visited: map[string]bool{}}
}

// Resolve reads and parses rootPath, inlines every import it (transitively)
// reaches, and returns the merged tree plus all diagnostics collected along
// the way. A file already visited under its normalized absolute location
// is skipped silently (not re-merged, not an error).
func (r *Resolver) Resolve(ctx context.Context, rootPath string) (*ast.SourceFile, diag.Diagnostics) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		r.addDiag(diag.FileNotFound, rootPath, fmt.Sprintf("resolve path: %v", err))
		return nil, r.diags
	}
	file := r.loadAndInlineLocal(ctx, abs, nil)
	return file, r.diags
}

func (r *Resolver) addDiag(kind diag.Kind, loc, msg string) {
	r.diags = append(r.diags, diag.Diagnostic{Kind: kind, Severity: diag.SeverityError, File: loc, Message: msg})
}

// chain renders the import chain for an ImportCycle diagnostic: a cycle
// is reported with the full chain that led to it.
func chain(stack []string, next string) string {
	return strings.Join(append(append([]string{}, stack...), next), " -> ")
}

// loadAndInlineLocal reads a local .rqc file, parses it, and recursively
// inlines its imports. stack carries the chain of absolute paths currently
// being loaded, for cycle-chain reporting.
func (r *Resolver) loadAndInlineLocal(ctx context.Context, abs string, stack []string) *ast.SourceFile {
	for _, s := range stack {
		if s == abs {
			r.addDiag(diag.ImportCycle, abs, fmt.Sprintf("import cycle: %s", chain(stack, abs)))
			return nil
		}
	}
	if r.visited[abs] {
		return nil
	}
	r.visited[abs] = true
	r.Watched = append(r.Watched, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		r.addDiag(diag.FileNotFound, abs, fmt.Sprintf("read %s: %v", abs, err))
		return nil
	}

	p := parser.New(string(data), abs)
	file, diags := p.Parse()
	r.diags = append(r.diags, diags...)

	dir := filepath.Dir(abs)
	file.Items = r.inlineItems(ctx, file.Items, dir, append(stack, abs))
	return file
}

// inlineItems returns items with each ast.Import replaced by the items
// it resolves to, recursing into category children so imports nested
// inside a category contribute as that category's children.
func (r *Resolver) inlineItems(ctx context.Context, items []ast.Item, dir string, stack []string) []ast.Item {
	out := make([]ast.Item, 0, len(items))
	for _, item := range items {
		imp, ok := item.(ast.Import)
		if !ok {
			if cat, ok := item.(*ast.Category); ok {
				cat.Children = r.inlineItems(ctx, cat.Children, dir, stack)
			}
			out = append(out, item)
			continue
		}
		out = append(out, r.resolveImport(ctx, imp, dir, stack)...)
	}
	return out
}

func (r *Resolver) resolveImport(ctx context.Context, imp ast.Import, dir string, stack []string) []ast.Item {
	target := imp.Target
	if isURL(target) {
		return r.resolveRemote(ctx, target)
	}

	abs := target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(dir, target)
	}
	abs = filepath.Clean(abs)

	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".rqc":
		imported := r.loadAndInlineLocal(ctx, abs, stack)
		if imported == nil {
			return nil
		}
		return imported.Items
	case ".json", ".yaml", ".yml":
		if r.visited[abs] {
			return nil
		}
		r.visited[abs] = true
		r.Watched = append(r.Watched, abs)
		data, err := os.ReadFile(abs)
		if err != nil {
			r.addDiag(diag.FileNotFound, abs, fmt.Sprintf("read %s: %v", abs, err))
			return nil
		}
		return r.translateOpenAPI(data, abs)
	default:
		r.addDiag(diag.UnsupportedSuffix, abs, fmt.Sprintf("import: unsupported suffix %q on %s", ext, abs))
		return nil
	}
}

// resolveRemote fetches an http(s) import and dispatches it by URL
// suffix, sniffing the body when the suffix is absent.
func (r *Resolver) resolveRemote(ctx context.Context, target string) []ast.Item {
	if r.visited[target] {
		return nil
	}
	r.visited[target] = true

	data, err := fetch(ctx, target, r.settings)
	if err != nil {
		var netErr net
		if errors.As(err, &netErr) {
			r.addDiag(diag.NetworkFailure, target, err.Error())
		} else {
			r.addDiag(diag.ImportTimeout, target, err.Error())
		}
		return nil
	}

	u, _ := url.Parse(target)
	ext := ""
	if u != nil {
		ext = strings.ToLower(filepath.Ext(u.Path))
	}
	switch ext {
	case ".rqc":
		p := parser.New(string(data), target)
		file, diags := p.Parse()
		r.diags = append(r.diags, diags...)
		return r.inlineItems(ctx, file.Items, "", []string{target})
	case ".json", ".yaml", ".yml":
		return r.translateOpenAPI(data, target)
	default:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return r.translateOpenAPI(data, target)
		}
		// YAML is the fallback sniff; an .rqc body fetched without an
		// extension is not representable, so anything that isn't JSON
		// is handed to the OpenAPI translator, which reports its own
		// diagnostic if the YAML doesn't parse as an OpenAPI document.
		return r.translateOpenAPI(data, target)
	}
}

func (r *Resolver) translateOpenAPI(data []byte, location string) []ast.Item {
	cat, diags := openapi.Translate(data, location)
	r.diags = append(r.diags, diags...)
	if cat == nil {
		return nil
	}
	return []ast.Item{cat}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// net marks an error as a transport failure (vs. a context deadline),
// distinguishing NetworkFailure from ImportTimeout diagnostics.
type net struct{ err error }

func (n net) Error() string { return n.err.Error() }
func (n net) Unwrap() error { return n.err }

// fetch retrieves target with the configured timeout and redirect cap.
// No retry loop: a failed remote import surfaces immediately as a
// diagnostic rather than masking transient failures with backoff.
func fetch(ctx context.Context, target string, settings Settings) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, settings.FetchTimeout)
	defer cancel()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= settings.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", settings.MaxRedirects)
			}
			return nil
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, net{err}
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, net{err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, net{fmt.Errorf("http %d: %s", resp.StatusCode, target)}
	}
	return io.ReadAll(resp.Body)
}
