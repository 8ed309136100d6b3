// Package format runs the csort pipeline over one Python source file:
// parse, classify, sort, diff, serialize.
package format

import (
	"github.com/phobologic/csort/internal/classify"
	"github.com/phobologic/csort/internal/diff"
	"github.com/phobologic/csort/internal/model"
	"github.com/phobologic/csort/internal/order"
	"github.com/phobologic/csort/internal/pytree"
)

// Result is the outcome for one file.
type Result struct {
	Changed    bool
	Output     []byte // reordered source; the input when nothing changed
	Classes    []diff.ClassDiff
	ClassCount int
	Converted  int // methods rewritten to static
}

// Source reorders every class (nested ones included) in one source file
// under the given policy. The input is never modified.
func Source(src []byte, policy model.OrderingPolicy) (*Result, error) {
	f, err := pytree.Parse(src)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, cls := range f.Classes {
		if err := processClass(cls, cls.Name, policy, res); err != nil {
			return nil, err
		}
	}

	if res.Changed || res.Converted > 0 {
		res.Output = f.Render()
	} else {
		res.Output = src
	}
	return res, nil
}

func processClass(c *pytree.Class, qualified string, policy model.OrderingPolicy, res *Result) error {
	res.ClassCount++

	records := c.Records()

	if policy.AutoConvertStatic {
		for i, rec := range records {
			if classify.StaticEligible(rec) {
				c.MarkStatic(i)
				res.Converted++
			}
		}
	}

	results := make([]model.ClassificationResult, len(records))
	for i, rec := range records {
		results[i] = classify.Classify(rec, policy)
	}

	ordered, err := order.Sort(results, policy)
	if err != nil {
		return err
	}

	perm := make([]int, len(ordered))
	for slot, r := range ordered {
		perm[slot] = r.Record.OriginalIndex
	}
	if err := c.SetOrder(perm); err != nil {
		return err
	}

	changes := diff.Class(ordered)
	if len(changes) > 0 {
		res.Changed = true
	}
	res.Classes = append(res.Classes, diff.ClassDiff{Class: qualified, Changes: changes})

	for _, el := range c.Elements {
		if el.Inner != nil {
			if err := processClass(el.Inner, qualified+"."+el.Inner.Name, policy, res); err != nil {
				return err
			}
		}
	}
	return nil
}
