// Package annot extracts key/value configuration from embedded SQL comments.
//
// Parsers are pure functions over raw text: they never fail, they return
// whatever well-formed annotations they find and skip the rest. Two built-in
// strategies exist: key:value line comments and YAML block comments. Further
// strategies register on a Registry, which is an explicit object handed to
// callers at composition time rather than process-wide state, so tests can
// build independent registries.
package annot
