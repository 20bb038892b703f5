//go:build !snowflakedebug

package snowflake

// debugAssertions is false in release builds: every precondition check guarded by it is
// removed by the compiler, and violating a precondition is undefined behaviour.
const debugAssertions = false
