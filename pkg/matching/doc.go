// Package matching decides whether two requests are the same call for replay
// purposes.
//
// A Matcher compares two requests and returns a Result. Matchers come in two
// styles, unified behind the Matcher interface:
//
//   - BoolFunc: returns true or false, never carries a message
//   - AssertFunc: returns nil on match, or an *AssertionError built with Fail
//     whose message explains the mismatch
//
// Matchers are registered by name in a Registry and resolved into an ordered
// matcher set. A set matches when every member matches; evaluation stops at
// the first failing matcher so it can be reported.
//
// Built-in matchers:
//
//   - method, scheme, host, port, path: exact equality of that component
//   - query: unordered equality of the query pairs
//   - uri: scheme, host, port, path and query together
//   - body: content-type aware comparison of form, JSON and XML-RPC bodies,
//     raw bytes otherwise
//   - headers: exact equality of the header map
//
// When nothing matches, Closest reports the candidates that came nearest and
// which matchers failed for them.
package matching
