// Package order produces the canonical element ordering for one class body.
package order

import (
	"errors"
	"fmt"
	"sort"

	"github.com/phobologic/csort/internal/classify"
	"github.com/phobologic/csort/internal/model"
)

// ErrNotPermutation marks an internal consistency failure: the sorter's
// output was not a permutation of its input. This is a defect, not a user
// error.
var ErrNotPermutation = errors.New("sorter output is not a permutation of its input")

// unit is one sortable item: either a single element or a whole custom
// group treated as one block.
type unit struct {
	level   int
	group   string // empty for ungrouped elements, sorts first within a level
	name    string
	index   int // original index, first member's for groups
	members []model.ClassificationResult
}

// Sort returns the classification results in canonical order.
//
// The key per element is (priority level, group key, secondary name,
// original index). Members of one custom group move as a single block at the
// custom-group level, keeping their relative source order; distinct groups
// order alphabetically by group name.
func Sort(results []model.ClassificationResult, policy model.OrderingPolicy) ([]model.ClassificationResult, error) {
	var units []*unit
	groups := make(map[string]*unit)

	for _, res := range results {
		if res.Category == model.CustomGroup {
			g, ok := groups[res.GroupKey]
			if !ok {
				g = &unit{
					level: policy.Level(model.CustomGroup),
					group: res.GroupKey,
					name:  res.GroupKey,
					index: res.Record.OriginalIndex,
				}
				groups[res.GroupKey] = g
				units = append(units, g)
			}
			if res.Record.OriginalIndex < g.index {
				g.index = res.Record.OriginalIndex
			}
			g.members = append(g.members, res)
			continue
		}
		units = append(units, &unit{
			level:   policy.Level(res.Category),
			name:    classify.SecondaryName(res),
			index:   res.Record.OriginalIndex,
			members: []model.ClassificationResult{res},
		})
	}

	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i], units[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.group != b.group {
			return a.group < b.group
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.index < b.index
	})

	ordered := make([]model.ClassificationResult, 0, len(results))
	for _, u := range units {
		members := u.members
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Record.OriginalIndex < members[j].Record.OriginalIndex
		})
		ordered = append(ordered, members...)
	}

	if err := checkPermutation(results, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// checkPermutation verifies that every original index appears exactly once.
func checkPermutation(in, out []model.ClassificationResult) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: %d elements in, %d out", ErrNotPermutation, len(in), len(out))
	}
	seen := make(map[int]bool, len(out))
	for _, res := range out {
		if seen[res.Record.OriginalIndex] {
			return fmt.Errorf("%w: duplicate original index %d", ErrNotPermutation, res.Record.OriginalIndex)
		}
		seen[res.Record.OriginalIndex] = true
	}
	for _, res := range in {
		if !seen[res.Record.OriginalIndex] {
			return fmt.Errorf("%w: missing original index %d", ErrNotPermutation, res.Record.OriginalIndex)
		}
	}
	return nil
}
