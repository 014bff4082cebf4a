// Package logtail reads the tail of log files for the viewer's log pane.
//
// A Follower keeps the last N lines in a ring buffer. It remembers the byte
// offset reached by the previous Poll, carries an unterminated final line over
// to the next call and starts again from the top when the file is truncated.
package logtail
