// Package work provides the single logical task queue every state mutation
// runs on. Timer jobs and HTTP commands post closures into the Processor,
// which executes them one at a time on its own goroutine, so a reader that
// also goes through the queue never observes a half-applied change.
//
// Simulated delays are not queued: callers wait outside the queue and post
// only the mutation, which keeps periodic refreshes flowing during a delay.
package work
