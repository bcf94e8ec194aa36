package templates

import (
	"context"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	formPolicyOnce sync.Once
	formPolicy     *bluemonday.Policy
)

// FormPolicy returns the sanitiser applied by Sanitized when no policy is
// given. It keeps form controls, layout containers and data-* attributes and
// strips scripts, event handlers and inline styles.
func FormPolicy() *bluemonday.Policy {
	formPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements(
			"div", "span", "p", "section", "fieldset", "legend", "label",
			"input", "select", "option", "optgroup", "textarea", "button",
			"table", "thead", "tbody", "tfoot", "tr", "td", "th",
			"ul", "ol", "li", "small", "strong", "em", "br", "hr",
		)
		policy.AllowAttrs(
			"id", "class", "title", "role", "aria-label", "aria-hidden",
			"hidden", "for",
		).Globally()
		policy.AllowAttrs(
			"name", "type", "value", "placeholder", "required", "checked",
			"selected", "disabled", "readonly", "multiple", "min", "max",
			"step", "pattern", "minlength", "maxlength", "rows", "cols",
			"autocomplete", "label",
		).OnElements("input", "select", "option", "optgroup", "textarea", "button")
		policy.AllowDataAttributes()

		formPolicy = policy
	})
	return formPolicy
}

type sanitized struct {
	source Source
	policy *bluemonday.Policy
}

// Sanitized wraps source so every template it returns is passed through
// policy. A nil policy selects FormPolicy.
func Sanitized(source Source, policy *bluemonday.Policy) Source {
	if policy == nil {
		policy = FormPolicy()
	}
	return sanitized{source: source, policy: policy}
}

func (s sanitized) Lookup(ctx context.Context, selector string) (string, error) {
	markup, err := s.source.Lookup(ctx, selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s.policy.Sanitize(markup)), nil
}
