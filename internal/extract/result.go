// Package extract implements the three-channel extraction cascade for
// league standings pages: embedded state blob, discovered API endpoints,
// and rendered DOM, in that order.
package extract

// Result carries one channel's outcome. Channels never fail hard for
// expected no-data conditions; they return an absent Result with a
// diagnostic and the orchestrator decides whether to escalate.
type Result struct {
	Present    bool
	Value      any
	Diagnostic string
}

// Found returns a present Result.
func Found(value any) Result {
	return Result{Present: true, Value: value}
}

// Absent returns an empty Result carrying a diagnostic for logging.
func Absent(diagnostic string) Result {
	return Result{Diagnostic: diagnostic}
}
