package engine

import (
	"fmt"
	"io"

	"github.com/valyala/fasttemplate"
)

// RenderTemplate substitutes {{name}} placeholders from vars. Unresolved
// placeholders are left untouched rather than replaced with an empty string,
// so a typo in a template stays visible instead of silently vanishing.
func RenderTemplate(tpl string, vars map[string]string) string {
	t, err := fasttemplate.NewTemplate(tpl, "{{", "}}")
	if err != nil {
		// unbalanced tags; return the raw template rather than failing the action
		return tpl
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := vars[tag]; ok {
			return w.Write([]byte(v))
		}
		return fmt.Fprintf(w, "{{%s}}", tag)
	})
}

// Default message templates. Each can be overridden in Config.
const (
	DefaultWarningTemplate = "Hi u/{{author}}, your post appears to be missing its Rule 5 explanation. " +
		"Please reply to your post with a comment of at least {{min_length}} characters explaining your submission " +
		"within the next {{warning_minutes}} minutes, or it will be removed.\n\n" +
		"*I am a bot. Replies to this comment are not monitored; contact the moderators via modmail with any questions.*"

	DefaultRemovalTemplate = "Hi u/{{author}}, your post was removed because it still has no Rule 5 explanation: {{reason}}\n\n" +
		"Once you have added an explanation comment, send the moderators a modmail containing a link to your post to have it reinstated.\n\n" +
		"*I am a bot. Contact the moderators via modmail with any questions.*"

	DefaultReplyNoPostID = "I could not find a link to a post in your message. " +
		"Please include the full link to the post you would like reinstated."

	DefaultReplyNotFound = "I could not find a post with id `{{postid}}`. " +
		"Please double-check the link and try again."

	DefaultReplyNotAuthor = "Only the author of a post can request its reinstatement."

	DefaultReplyNotBot = "That post was removed by a moderator, not by me, so I cannot reinstate it. " +
		"A moderator will review your message."

	DefaultReplyAlreadyLive = "That post is not currently removed, so there is nothing for me to do."

	DefaultReplyInvalid = "I still could not find a valid Rule 5 explanation on your post: {{reason}} " +
		"The explanation must be a top-level comment of at least {{min_length}} characters."

	DefaultReplySuccess = "Your post has been reinstated: {{permalink}}\n\nThanks for adding an explanation!"

	DefaultReplyError = "Something went wrong while handling your request. " +
		"A moderator will take a look; sorry for the inconvenience."
)

func fallback(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
