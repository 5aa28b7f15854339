// Package logx provides the bracketed-tag logging convention used across
// seek's subsystems, matching the teacher's own log.Printf("[tag] ...")
// style rather than pulling in a structured logging library.
package logx

import "log"

// Logger prefixes every message with a component tag, e.g. "[index]".
type Logger struct {
	tag string
}

// New returns a Logger for the given component tag.
func New(tag string) *Logger {
	return &Logger{tag: "[" + tag + "] "}
}

func (l *Logger) Printf(format string, args ...interface{}) {
	log.Printf(l.tag+format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	log.Println(append([]interface{}{l.tag}, args...)...)
}
