package notification

const (
	logMsgNotification  = "reader notification"
	logMsgPublishFailed = "publishing notification failed"
	logAttrUserID       = "user_id"
	logAttrMessage      = "message"
	logAttrError        = "error"
	logAttrRoutingKey   = "routing_key"
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// LogNotifier writes every notification to the log.
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(userID, message string) {
	n.logger.Info(logMsgNotification, logAttrUserID, userID, logAttrMessage, message)
}

// Notifier is the ledger's notification port.
type Notifier interface {
	Notify(userID, message string)
}

// FanOut delivers every notification to all notifiers in order.
type FanOut []Notifier

func (f FanOut) Notify(userID, message string) {
	for _, n := range f {
		n.Notify(userID, message)
	}
}
