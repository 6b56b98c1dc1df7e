// Package ratelimit implements fixed-window admission control keyed by
// caller identity.
//
// # Algorithm
//
// Each caller key owns one entry {count, resetAt}. On Admit:
//
//  1. No entry, or the entry's window has ended: start a new window with
//     count=1 and resetAt=now+Window.
//  2. count < Limit: increment and allow.
//  3. Otherwise deny, reporting resetAt so the caller can back off.
//
// This is a fixed window, not a sliding one. A caller can send up to
// 2*Limit requests in quick succession across a window boundary.
//
// # Memory
//
// Entries for callers that stop sending requests stay until Sweep removes
// them after their window ends. The scheduler runs Sweep periodically.
//
// # Usage
//
//	limiter := ratelimit.New(ratelimit.Config{Limit: 5, Window: time.Hour}, clock.Real())
//	decision := limiter.Admit(callerKey)
//	if !decision.Allowed {
//	    // respond 429 with decision.RetryAfter
//	}
//
// # Thread Safety
//
// Admit is a single critical section, so check-and-increment is atomic for
// each key.
package ratelimit
