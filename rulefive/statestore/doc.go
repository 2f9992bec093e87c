// Component for durable, TTL-scoped post lifecycle state (seen, warned,
// removed-by-bot, approved).
//
// Includes an interface and implementations using redis and in-process memory.
//
// Every fact is an independent key with its own expiry; absence of a key is
// deliberately indistinguishable from "never recorded" vs "expired".
package statestore
