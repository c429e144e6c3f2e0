// Package notify is the fire-and-forget channel for surfacing mutation
// outcomes to the user. Notifications never carry control flow; a dropped
// toast is harmless.
package notify

import (
	"github.com/charmbracelet/log"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Failure Kind = "failure"
)

// Notifier delivers one user-facing message.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Logger is the default Notifier, writing through charm log.
type Logger struct{}

// Notify logs the message at a level matching its kind.
func (Logger) Notify(kind Kind, message string) {
	switch kind {
	case Failure:
		log.Errorf("%s", message)
	default:
		log.Infof("%s", message)
	}
}

// Recorder captures notifications for assertions. Test helper.
type Recorder struct {
	Events []Event
}

// Event is one recorded notification.
type Event struct {
	Kind    Kind
	Message string
}

// Notify appends the event.
func (r *Recorder) Notify(kind Kind, message string) {
	r.Events = append(r.Events, Event{Kind: kind, Message: message})
}
