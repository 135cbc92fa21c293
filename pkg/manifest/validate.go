package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
)

// Duplicate describes one app identity declared more than once
type Duplicate struct {
	Keys   []string `json:"keys"`
	Groups []string `json:"groups"`
}

// FindDuplicates returns every folded key that appears more than once, either
// across groups or as case variants within one group. Output is sorted.
func FindDuplicates(doc *Document) []Duplicate {
	type seen struct {
		count  int
		keys   map[string]bool
		groups map[string]bool
	}
	byFold := make(map[string]*seen)

	for _, rec := range doc.Records() {
		f := types.Fold(rec.Key)
		s, ok := byFold[f]
		if !ok {
			s = &seen{keys: map[string]bool{}, groups: map[string]bool{}}
			byFold[f] = s
		}
		s.count++
		s.keys[rec.Key] = true
		s.groups[rec.Group] = true
	}

	folds := make([]string, 0, len(byFold))
	for f, s := range byFold {
		if s.count > 1 {
			folds = append(folds, f)
		}
	}
	sort.Strings(folds)

	out := make([]Duplicate, 0, len(folds))
	for _, f := range folds {
		s := byFold[f]
		out = append(out, Duplicate{Keys: sortedKeys(s.keys), Groups: sortedKeys(s.groups)})
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// validateUnique fails with ErrDuplicateKey when any identity repeats
func validateUnique(name string, doc *Document) error {
	dups := FindDuplicates(doc)
	if len(dups) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "duplicate app keys in %s (keys are case-insensitive):", name)
	for _, d := range dups {
		fmt.Fprintf(&b, "\n  - %s in [%s]", strings.Join(d.Keys, ", "), strings.Join(d.Groups, "], ["))
	}
	b.WriteString("\nEdit the file so each app appears only once, then run the command again.")

	return errors.New(errors.ErrDuplicateKey, b.String()).
		WithDetail("file", name).
		WithDetail("duplicates", dups)
}
