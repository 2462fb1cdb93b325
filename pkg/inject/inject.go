// Package inject performs the reverse-sorted string splice that replaces
// each resolved import's original text span with its resolved content.
package inject

import (
	"sort"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/parser"
)

// Resolved pairs an ImportAction with its resolved textual content.
type Resolved struct {
	Action  parser.ImportAction
	Content string
}

// Inject splices every resolved action's original text span, at its
// starting index, with its resolved content. Actions are applied in
// descending index order so that earlier indices in the source remain
// valid for actions not yet spliced. This is a pure string transformation:
// it does not validate that Action.Original matches the corresponding
// source slice.
func Inject(source string, resolved []Resolved) string {
	ordered := make([]Resolved, len(resolved))
	copy(ordered, resolved)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Action.Index > ordered[j].Action.Index
	})

	var b strings.Builder
	b.Grow(len(source))
	b.WriteString(source)
	out := b.String()

	for _, r := range ordered {
		start := r.Action.Index
		end := start + len(r.Action.Original)
		if start < 0 || end > len(out) || start > end {
			continue
		}
		out = out[:start] + r.Content + out[end:]
	}
	return out
}
