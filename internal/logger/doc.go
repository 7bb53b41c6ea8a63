// Package logger wraps zap with a global sugared logger, context helpers
// (ToContext/FromContext/WithName/WithKV) and level parsing.
//
// Commands put a named logger into the context and every package below
// them logs through the context, so log lines carry the step they came from.
package logger
