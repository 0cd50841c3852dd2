package entity

// NotificationEvent is the type of the events sent by the pipeline to the
// notification channel, accessible externally with valsync.NotifyChannel().
type NotificationEvent struct {

	// Unique ID of this event
	EventId string

	// The notification level
	Level string

	// Timestamp of the event on the format "2006-01-02T15:04:05.000000Z"
	Timestamp string

	// The entity type of the sender, e.g. "extractor", "loader", etc
	Sender string

	// The instance alias of the running pipeline
	Instance string

	// The run ID, if the event was sent inside a run
	Run string

	Message string

	// Location and stack info, from where notification was sent.
	// Func is always provided.
	// File and Line are added when notification level is WARN or above.
	// StackTrace is added when notification level is ERROR.
	Func       string
	File       string
	Line       int
	StackTrace string
}

type NotifyChan chan NotificationEvent

const (
	NotifyLevelInvalid = iota
	NotifyLevelDebug
	NotifyLevelInfo
	NotifyLevelWarn
	NotifyLevelError
)

const (
	NotifyLevelStrDebug = "DEBUG"
	NotifyLevelStrInfo  = "INFO"
	NotifyLevelStrWarn  = "WARN"
	NotifyLevelStrError = "ERROR"
)

var notifyLevelName = map[int]string{
	NotifyLevelInvalid: "INVALID",
	NotifyLevelDebug:   NotifyLevelStrDebug,
	NotifyLevelInfo:    NotifyLevelStrInfo,
	NotifyLevelWarn:    NotifyLevelStrWarn,
	NotifyLevelError:   NotifyLevelStrError,
}

func NotifyLevelName(notifyLevel int) string {
	name, ok := notifyLevelName[notifyLevel]
	if !ok {
		name = "INVALID"
	}
	return name
}

// NotifyLevel returns the level value for a level name, e.g. as provided in
// the LOG_LEVEL env var. Unknown names yield NotifyLevelInvalid.
func NotifyLevel(name string) int {
	for level, levelName := range notifyLevelName {
		if name == levelName {
			return level
		}
	}
	return NotifyLevelInvalid
}
