// Rule 5 enforcement engine: every image, video, or link post must carry an
// explanatory comment.
//
// This package tree contains the post lifecycle state machine (grace ->
// warn -> remove -> reinstate), a TTL-scoped state store that keeps
// transitions idempotent under repeated and out-of-order triggers, a pure
// text/URL rule-matching engine, and the moderated-mail reinstatement
// channel. Platform access goes through narrow collaborator interfaces; see
// the reddit package for the adapter and cmd/quintus for the daemon built
// on this tree.
package rulefive
