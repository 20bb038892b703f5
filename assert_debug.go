//go:build snowflakedebug

package snowflake

// debugAssertions enables precondition checks on the hot paths.
// Build with -tags snowflakedebug to turn contract violations into panics.
const debugAssertions = true
