// Package common holds small helpers shared by the background jobs.
package common

import "github.com/ehb/ragchat/logger"

// Recover must be deferred directly. It logs a panic with msg and returns
// the recovered value, or nil when nothing panicked.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil && msg != "" {
		logger.Error(msg, "panic:", panicErr)
	}
	return panicErr
}
