// Package classify assigns every class-body element to exactly one category.
package classify

import (
	"github.com/phobologic/csort/internal/model"
)

// Classify maps one element record to its category. The dispatch is
// first-match-wins over a fixed rule order and never fails: anything
// unrecognized falls back to instance-method.
func Classify(rec model.ElementRecord, policy model.OrderingPolicy) model.ClassificationResult {
	res := model.ClassificationResult{Record: rec}

	switch rec.Kind {
	case model.KindEllipsis:
		res.Category = model.Ellipsis
		return res
	case model.KindDocstring:
		res.Category = model.ClassDocstring
		return res
	case model.KindAssignment:
		if rec.HasTypeAnnotation {
			res.Category = model.TypedAttribute
		} else {
			res.Category = model.UntypedAttribute
		}
		return res
	case model.KindClass:
		res.Category = model.InnerClass
		return res
	case model.KindFunction:
		res.Category, res.GroupKey = classifyFunction(rec, policy)
		return res
	}

	// Bare expressions, pass statements and anything else unrecognized.
	res.Category = model.InstanceMethod
	return res
}

func classifyFunction(rec model.ElementRecord, policy model.OrderingPolicy) (model.Category, string) {
	// Dunder status beats every decorator-based category.
	if model.IsDunder(rec.Name) {
		return model.DunderMethod, ""
	}

	if policy.HonorCustomGroups {
		if key, ok := groupKey(rec); ok {
			return model.CustomGroup, key
		}
	}

	if hasDecoratorCategory(rec, model.ClassMethod) {
		return model.ClassMethod, ""
	}
	if hasDecoratorCategory(rec, model.StaticMethod) {
		return model.StaticMethod, ""
	}
	if policy.AutoConvertStatic && StaticEligible(rec) {
		return model.StaticMethod, ""
	}
	if hasDecoratorCategory(rec, model.Property) {
		return model.Property, ""
	}
	if hasDecoratorCategory(rec, model.Getter) {
		return model.Getter, ""
	}
	if hasDecoratorCategory(rec, model.Setter) {
		return model.Setter, ""
	}
	if hasDecoratorCategory(rec, model.Deleter) {
		return model.Deleter, ""
	}

	if decorated(rec) {
		return model.DecoratedMethod, ""
	}

	if len(rec.Name) > 0 && rec.Name[0] == '_' {
		return model.PrivateMethod, ""
	}

	return model.InstanceMethod, ""
}

func hasDecoratorCategory(rec model.ElementRecord, want model.Category) bool {
	for _, d := range rec.Decorators {
		if c, ok := model.CategoryForDecorator(d.Name); ok && c == want {
			return true
		}
	}
	return false
}

// decorated reports whether the element carries any decorator that does not
// map to a dedicated category (the csort_group decorator counts as plain
// decoration once grouping is disabled).
func decorated(rec model.ElementRecord) bool {
	for _, d := range rec.Decorators {
		if c, ok := model.CategoryForDecorator(d.Name); !ok || c == model.CustomGroup {
			return true
		}
	}
	return false
}

// groupKey extracts the group argument from a csort_group decorator.
// A bare @csort_group with no argument groups under the empty-name group.
func groupKey(rec model.ElementRecord) (string, bool) {
	for _, d := range rec.Decorators {
		if d.Name != model.GroupDecorator {
			continue
		}
		if len(d.Args) > 0 {
			return d.Args[0], true
		}
		return "", true
	}
	return "", false
}

// SecondaryName returns the alphabetical tie-break key for an element.
// Decorated methods sort by their alphabetically smallest unrecognized
// decorator name; everything else sorts by element name.
func SecondaryName(res model.ClassificationResult) string {
	if res.Category != model.DecoratedMethod {
		return res.Record.Name
	}
	name := ""
	for _, d := range res.Record.Decorators {
		if c, ok := model.CategoryForDecorator(d.Name); ok && c != model.CustomGroup {
			continue
		}
		if name == "" || d.Name < name {
			name = d.Name
		}
	}
	if name == "" {
		return res.Record.Name
	}
	return name
}
