package export

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
)

// DefaultModulePrefix marks templates of module pages, which are rendered as
// part of their parent and never on their own.
const DefaultModulePrefix = "module."

const (
	reasonModulePage    = "module page"
	reasonNoContentFile = "no content file"
	reasonExcluded      = "excluded by filter"
)

// Decision is the verdict of a Filter for one language version of a page.
type Decision struct {
	Include bool
	Reason  string
}

// Include is the decision of pages that are built.
var Include = Decision{Include: true}

// Exclude returns an exclusion decision with reason.
func Exclude(reason string) Decision { return Decision{Include: false, Reason: reason} }

// Filter decides whether a page version is part of the export.
type Filter interface {
	Decide(page *Page) (Decision, error)
}

// DefaultFilter skips module pages and pages without a content file.
type DefaultFilter struct {
	ModulePrefix string
}

func (f DefaultFilter) Decide(page *Page) (Decision, error) {
	prefix := f.ModulePrefix
	if prefix == "" {
		prefix = DefaultModulePrefix
	}
	if strings.HasPrefix(page.Template, prefix) {
		return Exclude(reasonModulePage), nil
	}
	if !page.Exists {
		return Exclude(reasonNoContentFile), nil
	}
	return Include, nil
}

// Predicate is a loosely typed filter callback. It may return a bool, a
// Decision, or a one- or two-element sequence holding a bool and an optional
// reason string. Any other value makes the page fail validation.
type Predicate func(page *Page) any

func (p Predicate) Decide(page *Page) (Decision, error) {
	return decisionFrom(p(page))
}

func decisionFrom(v any) (Decision, error) {
	switch r := v.(type) {
	case bool:
		if r {
			return Include, nil
		}
		return Exclude(reasonExcluded), nil
	case Decision:
		if !r.Include && r.Reason == "" {
			r.Reason = reasonExcluded
		}
		return r, nil
	case []any:
		return decisionFromTuple(r)
	case [2]any:
		return decisionFromTuple(r[:])
	}
	return Decision{}, derrors.ValidationError(fmt.Sprintf("filter returned %T, expected bool or (bool, reason)", v))
}

func decisionFromTuple(t []any) (Decision, error) {
	if len(t) == 0 || len(t) > 2 {
		return Decision{}, derrors.ValidationError(fmt.Sprintf("filter returned %d values, expected 1 or 2", len(t)))
	}
	include, ok := t[0].(bool)
	if !ok {
		return Decision{}, derrors.ValidationError(fmt.Sprintf("filter returned %T as first value, expected bool", t[0]))
	}
	reason := ""
	if len(t) == 2 && t[1] != nil {
		if reason, ok = t[1].(string); !ok {
			return Decision{}, derrors.ValidationError(fmt.Sprintf("filter returned %T as reason, expected string", t[1]))
		}
	}
	if include {
		return Decision{Include: true, Reason: reason}, nil
	}
	if reason == "" {
		reason = reasonExcluded
	}
	return Exclude(reason), nil
}

// TemplateRule excludes pages rendered with Template.
type TemplateRule struct {
	Template string `yaml:"template"`
	Reason   string `yaml:"reason"`
}

// URIRule excludes pages whose URI matches the doublestar Pattern.
type URIRule struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`
}

// RuleFilter applies exclusion rules before falling back to Next
// (DefaultFilter when nil).
type RuleFilter struct {
	Templates []TemplateRule
	URIs      []URIRule
	Next      Filter
}

func (f RuleFilter) Decide(page *Page) (Decision, error) {
	for _, r := range f.Templates {
		if page.Template == r.Template {
			return Exclude(orDefault(r.Reason, "template "+r.Template+" excluded")), nil
		}
	}
	for _, r := range f.URIs {
		if !doublestar.ValidatePattern(r.Pattern) {
			return Decision{}, derrors.ValidationError(fmt.Sprintf("invalid uri pattern %q", r.Pattern))
		}
		if ok, _ := doublestar.Match(r.Pattern, page.URI); ok {
			return Exclude(orDefault(r.Reason, reasonExcluded)), nil
		}
	}
	next := f.Next
	if next == nil {
		next = DefaultFilter{}
	}
	return next.Decide(page)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
