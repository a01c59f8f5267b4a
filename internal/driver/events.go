package driver

// Stage tracks a file's progress through the format pipeline.
type Stage uint8

const (
	StageQueued Stage = iota
	StageFormatting
	StageDone
	StageCached
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageFormatting:
		return "formatting"
	case StageDone:
		return "done"
	case StageCached:
		return "cached"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports one file's stage change while FormatPaths runs.
type Event struct {
	Path    string
	Stage   Stage
	Changed bool
	Err     error
}

// EventSink receives progress events. Implementations must be safe for
// concurrent use; FormatPaths publishes from multiple goroutines.
type EventSink interface {
	Publish(Event)
}

// ChannelSink forwards events to a channel, typically consumed by the
// terminal UI.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Publish(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

func publish(sink EventSink, ev Event) {
	if sink != nil {
		sink.Publish(ev)
	}
}
