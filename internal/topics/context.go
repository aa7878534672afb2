// Package topics infers the subject and topic of a conversation from free
// text using ordered rule tables.
package topics

import (
	"strings"
	"time"
)

// General is the placeholder value the chat backend uses when it has no
// specific subject or topic. It never overwrites a known value.
const General = "general"

// Context is the current conversation subject and topic. The zero value is
// an empty context. It is owned by the chat orchestrator and passed
// explicitly to whoever needs it.
type Context struct {
	Subject     string
	Topic       string
	LastUpdated time.Time
}

// Delta is the change proposed by Infer.
type Delta struct {
	Subject string
	Topic   string
	// Rule is the pattern that matched, for logging. Empty when nothing
	// matched.
	Rule string
}

// Empty reports whether the delta carries no information.
func (d Delta) Empty() bool {
	return d.Subject == "" && d.Topic == ""
}

// Apply applies an inferred delta. A topic match overwrites the topic and,
// when the rule implies one, the subject. A subject-only match leaves the
// topic alone. LastUpdated is refreshed even when the delta is empty.
func (c *Context) Apply(d Delta, now time.Time) {
	if d.Topic != "" {
		c.Topic = d.Topic
	}
	if d.Subject != "" {
		c.Subject = d.Subject
	}
	c.LastUpdated = now
}

// Update applies an explicitly declared subject and topic, e.g. from a chat
// response. Empty values and "general" (any case) carry no information and
// leave the existing value in place. It reports whether anything changed.
func (c *Context) Update(subject, topic string, now time.Time) bool {
	changed := false
	if informative(subject) {
		c.Subject = strings.TrimSpace(subject)
		changed = true
	}
	if informative(topic) {
		c.Topic = strings.TrimSpace(topic)
		changed = true
	}
	if changed {
		c.LastUpdated = now
	}
	return changed
}

// Reset clears the context.
func (c *Context) Reset() {
	*c = Context{}
}

// Label renders the context for display, e.g. "Physics › energy".
func (c Context) Label() string {
	switch {
	case c.Subject != "" && c.Topic != "":
		return c.Subject + " › " + c.Topic
	case c.Subject != "":
		return c.Subject
	case c.Topic != "":
		return c.Topic
	}
	return "No topic yet"
}

func informative(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, General)
}
