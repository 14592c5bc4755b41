package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies a filesystem change.
type Kind string

const (
	KindAdd    Kind = "add"
	KindChange Kind = "change"
	KindRemove Kind = "remove"
)

// Event is one filesystem change delivered to the rebuild scheduler.
type Event struct {
	Kind Kind
	Path string
	Time time.Time
}

// kindOf maps an fsnotify op onto an event kind. Chmod-only events yield "".
func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindAdd
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return KindRemove
	case op.Has(fsnotify.Write):
		return KindChange
	default:
		return ""
	}
}
