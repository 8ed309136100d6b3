// Package diff compares original and reordered class bodies and aggregates
// change reports across classes and files.
package diff

import "github.com/phobologic/csort/internal/model"

// Change records one element whose position changed.
type Change struct {
	Name     string
	Category model.Category
	OldIndex int
	NewIndex int
}

// Class returns the change list for one sorted class body, limited to
// elements that moved, in new-order sequence.
func Class(ordered []model.ClassificationResult) []Change {
	var changes []Change
	for newIndex, res := range ordered {
		if res.Record.OriginalIndex == newIndex {
			continue
		}
		changes = append(changes, Change{
			Name:     res.Record.Name,
			Category: res.Category,
			OldIndex: res.Record.OriginalIndex,
			NewIndex: newIndex,
		})
	}
	return changes
}

// Changed reports whether the sorted order differs from the original.
func Changed(ordered []model.ClassificationResult) bool {
	for newIndex, res := range ordered {
		if res.Record.OriginalIndex != newIndex {
			return true
		}
	}
	return false
}

// ClassDiff is the change list for one class, labelled by qualified name.
type ClassDiff struct {
	Class   string
	Changes []Change
}

// FileDiff aggregates per-class diffs for one file.
type FileDiff struct {
	Path    string
	Classes []ClassDiff
}

// Changed reports whether any class in the file moved an element.
func (fd FileDiff) Changed() bool {
	for _, cd := range fd.Classes {
		if len(cd.Changes) > 0 {
			return true
		}
	}
	return false
}
