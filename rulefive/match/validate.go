package match

import (
	"fmt"
	"strings"
)

// TextRules is the set of constraints a candidate explanation must satisfy.
// Zero-value fields are skipped.
type TextRules struct {
	MinLength   int
	ContainsAll []string
	ContainsOne []string
	StartsWith  []string
	EndsWith    []string
}

// Result of checking a text against a TextRules set. Reason is set whenever
// Valid is false and is written for direct interpolation into user replies.
type Result struct {
	Valid  bool
	Reason string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// ValidateText checks text against rules in a fixed precedence order,
// short-circuiting on the first failure: minimum length, contains-all,
// contains-one, starts-with, ends-with. Callers rely on getting the most
// fundamental failure first ("too short" before "missing keyword").
func ValidateText(text string, rules TextRules) Result {
	if rules.MinLength > 0 && !MeetsMinimumLength(text, rules.MinLength) {
		return fail(fmt.Sprintf("the explanation is shorter than the required %d characters", rules.MinLength))
	}
	if !ContainsAll(text, rules.ContainsAll) {
		return fail(fmt.Sprintf("the explanation must mention all of: %s", strings.Join(rules.ContainsAll, ", ")))
	}
	if !ContainsOne(text, rules.ContainsOne) {
		return fail(fmt.Sprintf("the explanation must mention at least one of: %s", strings.Join(rules.ContainsOne, ", ")))
	}
	if !StartsWith(text, rules.StartsWith) {
		return fail(fmt.Sprintf("the explanation must start with one of: %s", strings.Join(rules.StartsWith, ", ")))
	}
	if !EndsWith(text, rules.EndsWith) {
		return fail(fmt.Sprintf("the explanation must end with one of: %s", strings.Join(rules.EndsWith, ", ")))
	}
	return ok()
}
