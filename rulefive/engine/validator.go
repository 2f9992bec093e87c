package engine

import (
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/match"
)

// ValidationResult reports whether a valid explanation exists. Reason is set
// whenever Valid is false and is written for direct interpolation into replies.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// ValidateExplanation checks whether the post carries a valid explanation,
// in the post body, the author's top-level comment, or either, depending on
// the configured source. comment may be nil when the author has not
// commented.
func (eng *Engine) ValidateExplanation(post *Post, comment *Comment) ValidationResult {
	rules := eng.Config.explanationRules()

	switch eng.Config.ExplanationSource {
	case SourceSelftext:
		res := match.ValidateText(post.SelfText, rules)
		return ValidationResult{Valid: res.Valid, Reason: res.Reason}

	case SourceComment:
		if comment == nil {
			return ValidationResult{Valid: false, Reason: "no explanation comment was found"}
		}
		res := match.ValidateText(comment.Body, rules)
		return ValidationResult{Valid: res.Valid, Reason: res.Reason}

	default: // SourceBoth
		if comment == nil && post.SelfText == "" {
			return ValidationResult{Valid: false, Reason: "no explanation comment was found"}
		}
		if comment != nil {
			if res := match.ValidateText(comment.Body, rules); res.Valid {
				return ValidationResult{Valid: true}
			}
		}
		if post.SelfText != "" {
			if res := match.ValidateText(post.SelfText, rules); res.Valid {
				return ValidationResult{Valid: true}
			}
		}
		// neither source validates; report the comment's failure when a
		// comment exists, since that is what the author can fix
		if comment != nil {
			res := match.ValidateText(comment.Body, rules)
			return ValidationResult{Valid: false, Reason: res.Reason}
		}
		res := match.ValidateText(post.SelfText, rules)
		return ValidationResult{Valid: false, Reason: res.Reason}
	}
}
