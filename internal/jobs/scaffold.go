// SPDX-License-Identifier: MIT

package jobs

import (
	"bytes"
	"context"
	"fmt"
)

// renderScaffold renders the Markdown scaffold for one generated page: the
// page title, one section per symbol with a stable anchor, and a marker for
// where the external docstring generator drops its content.
func renderScaffold(page PagePlan) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", page.Title)

	for _, sym := range page.Symbols {
		anchor := slugify(sym.Symbol)
		fmt.Fprintf(&buf, "## %s {#%s}\n\n", sym.Symbol, anchor)
		if sym.Resolved {
			fmt.Fprintf(&buf, "<!-- source: %s", sym.File)
			if sym.Attribute != "" {
				fmt.Fprintf(&buf, " (%s)", sym.Attribute)
			}
			buf.WriteString(" -->\n\n")
		} else {
			buf.WriteString("<!-- source: unresolved -->\n\n")
		}
	}

	return buf.Bytes()
}

// writeScaffold renders and atomically writes the scaffold for one page.
func writeScaffold(ctx context.Context, target string, page PagePlan) error {
	return writeFileAtomic(ctx, target, renderScaffold(page))
}
