// Package build glues the importer (C3) and resolver (C4) into the single
// pipeline both the CLI and the watcher drive: parse + inline imports,
// then resolve into an ApiModel, reporting every diagnostic collected
// along the way.
package build

import (
	"context"

	"reqcraft/internal/diag"
	"reqcraft/internal/importer"
	"reqcraft/internal/model"
)

// Result is one build attempt's outcome. Watched is populated even on a
// failed resolve, as long as the import walk itself produced a tree, so
// the watcher can still pick up files newly discovered mid-failure.
type Result struct {
	Model   *model.ApiModel
	Watched []string
	Diags   diag.Diagnostics
}

// Options carries the importer settings a build runs with; the zero value
// uses importer.DefaultSettings().
type Options struct {
	ImporterSettings importer.Settings
}

// Run parses rootPath, inlines its imports, and resolves the merged tree
// into an ApiModel. Diags may be non-empty even when Model is non-nil
// (e.g. a DuplicateVariableDefault warning); callers decide whether
// diag.Diagnostics.HasErrors() constitutes failure.
func Run(ctx context.Context, rootPath string, opts Options) Result {
	imp := importer.New(opts.ImporterSettings)
	file, diags := imp.Resolve(ctx, rootPath)
	res := Result{Watched: imp.Watched, Diags: diags}
	if file == nil || diags.HasErrors() {
		return res
	}

	m, resolveDiags := model.Resolve(file)
	res.Diags = append(res.Diags, resolveDiags...)
	res.Model = m
	return res
}
