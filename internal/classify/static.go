package classify

import "github.com/phobologic/csort/internal/model"

// selfName is the conventional first parameter of an instance method.
const selfName = "self"

// StaticEligible reports whether an instance method could safely be marked
// static: it takes self, its body never references self, and it is not
// already claimed by a decorator category that owns the first parameter.
// The check is purely syntactic; anything it cannot prove reports false.
func StaticEligible(rec model.ElementRecord) bool {
	if rec.Kind != model.KindFunction {
		return false
	}
	if len(rec.Parameters) == 0 || rec.Parameters[0] != selfName {
		return false
	}
	if rec.BodyUsesFirstParam {
		return false
	}
	if model.IsDunder(rec.Name) {
		return false
	}
	for _, d := range rec.Decorators {
		// Grouping says nothing about state use, so csort_group members
		// stay convertible.
		if c, ok := model.CategoryForDecorator(d.Name); ok && c != model.CustomGroup {
			return false
		}
		// Abstract methods keep their signature for overriders.
		if d.Name == "abstractmethod" || d.Name == "abc.abstractmethod" {
			return false
		}
	}
	return true
}
