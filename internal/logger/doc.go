// Package logger wraps zap with a process-wide sugared logger and
// context helpers (ToContext/FromContext/WithName/WithKV).
//
// Commands attach a named logger to their context once; everything below
// pulls it back out with FromContext, so tests can swap in an observer.
package logger
