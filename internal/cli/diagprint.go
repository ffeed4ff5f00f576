package cli

import (
	"fmt"
	"io"
	"os"

	"reqcraft/internal/diag"
)

// printDiagnostics renders every diagnostic as file, line, column, and a
// two-line caret snippet (when the source text is available). dev/build
// both report diagnostics through this path before deciding their exit
// code.
func printDiagnostics(w io.Writer, diags diag.Diagnostics) {
	for _, d := range diags {
		src := ""
		if d.File != "" {
			if data, err := os.ReadFile(d.File); err == nil {
				src = string(data)
			}
		}
		fmt.Fprintln(w, d.Render(src))
	}
}
