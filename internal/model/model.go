// Package model defines core data structures for csort.
package model

import "strings"

// Category is the closed classification assigned to a class-body element.
type Category string

const (
	Ellipsis         Category = "ellipsis"
	ClassDocstring   Category = "class_docstring"
	TypedAttribute   Category = "typed_attribute"
	UntypedAttribute Category = "untyped_attribute"
	DunderMethod     Category = "dunder_method"
	CustomGroup      Category = "custom_group"
	ClassMethod      Category = "class_method"
	StaticMethod     Category = "static_method"
	Property         Category = "property"
	Getter           Category = "getter"
	Setter           Category = "setter"
	Deleter          Category = "deleter"
	DecoratedMethod  Category = "decorated_method"
	InstanceMethod   Category = "instance_method"
	PrivateMethod    Category = "private_method"
	InnerClass       Category = "inner_class"
)

// Categories lists every category in default priority order.
var Categories = []Category{
	Ellipsis,
	ClassDocstring,
	TypedAttribute,
	UntypedAttribute,
	DunderMethod,
	CustomGroup,
	ClassMethod,
	StaticMethod,
	Property,
	Getter,
	Setter,
	Deleter,
	DecoratedMethod,
	InstanceMethod,
	PrivateMethod,
	InnerClass,
}

var defaultLevels = map[Category]int{
	Ellipsis:         0,
	ClassDocstring:   0,
	TypedAttribute:   1,
	UntypedAttribute: 2,
	DunderMethod:     3,
	CustomGroup:      4,
	ClassMethod:      5,
	StaticMethod:     6,
	Property:         7,
	Getter:           8,
	Setter:           9,
	Deleter:          10,
	DecoratedMethod:  11,
	InstanceMethod:   12,
	PrivateMethod:    13,
	InnerClass:       14,
}

// DefaultLevels returns a fresh copy of the default priority table.
// Lower levels sort earlier; categories may share a level.
func DefaultLevels() map[Category]int {
	levels := make(map[Category]int, len(defaultLevels))
	for c, l := range defaultLevels {
		levels[c] = l
	}
	return levels
}

// Known reports whether name is a valid category name.
func Known(name string) bool {
	_, ok := defaultLevels[Category(name)]
	return ok
}

// GroupDecorator is the decorator that tags methods with a custom group.
var GroupDecorator = "csort_group"

// KindHint is the raw syntactic kind of a class-body statement.
type KindHint string

const (
	KindFunction   KindHint = "function"
	KindAssignment KindHint = "assignment"
	KindClass      KindHint = "class"
	KindDocstring  KindHint = "docstring"
	KindEllipsis   KindHint = "ellipsis"
	KindExpression KindHint = "expression"
)

// Decorator is one decorator as written in source, e.g. "staticmethod",
// "value.setter" or "csort_group" with its group argument.
type Decorator struct {
	Name string   // dotted name without the leading @
	Args []string // call arguments, unquoted string literals where possible
}

// ElementRecord describes one class-body statement. Records are produced by
// the tree provider and are read-only to the classification pipeline.
type ElementRecord struct {
	Name               string
	Kind               KindHint
	Decorators         []Decorator
	HasTypeAnnotation  bool     // meaningful for assignments
	Parameters         []string // meaningful for functions
	BodyUsesFirstParam bool     // meaningful for functions
	OriginalIndex      int      // position in the class body before reordering
}

// ClassificationResult pairs a record with its assigned category.
// GroupKey is meaningful only when Category is CustomGroup.
type ClassificationResult struct {
	Record   ElementRecord
	Category Category
	GroupKey string
}

// OrderingPolicy is the resolved per-run ordering and behaviour policy.
type OrderingPolicy struct {
	Levels            map[Category]int
	HonorCustomGroups bool
	AutoConvertStatic bool
}

// DefaultPolicy returns the built-in policy before any overrides.
func DefaultPolicy() OrderingPolicy {
	return OrderingPolicy{
		Levels:            DefaultLevels(),
		HonorCustomGroups: true,
		AutoConvertStatic: false,
	}
}

// Level returns the priority level for a category, falling back to the
// default table for anything missing from the resolved mapping.
func (p OrderingPolicy) Level(c Category) int {
	if l, ok := p.Levels[c]; ok {
		return l
	}
	return defaultLevels[c]
}

// CategoryForDecorator maps a decorator name to the category it implies.
// Attribute-style decorators (value.getter, value.setter, value.deleter)
// match on their final component.
func CategoryForDecorator(name string) (Category, bool) {
	switch name {
	case "classmethod":
		return ClassMethod, true
	case "staticmethod":
		return StaticMethod, true
	case "property":
		return Property, true
	}
	if name == GroupDecorator {
		return CustomGroup, true
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		switch name[i+1:] {
		case "getter":
			return Getter, true
		case "setter":
			return Setter, true
		case "deleter":
			return Deleter, true
		}
	}
	return "", false
}

// IsDunder reports whether a name is dunder-delimited (__x__). The check is
// purely syntactic: malformed multi-underscore names still count.
func IsDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
