package notification

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeKindTopic     = "topic"
	routingKeyReader      = "reader.notification"
	eventTypeNotification = "ReaderNotified"
	contentTypeJSON       = "application/json"
	defaultPublishTimeout = 5 * time.Second
)

var (
	ErrDialingBrokerFailed     = errors.New("dialing amqp broker failed")
	ErrOpeningChannelFailed    = errors.New("opening amqp channel failed")
	ErrDeclaringExchangeFailed = errors.New("declaring amqp exchange failed")
)

// Publisher is the part of *amqp.Channel the AMQPNotifier needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Payload   NotificationPayload `json:"payload"`
}

type NotificationPayload struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// AMQPNotifier publishes notifications to a topic exchange with the routing key "reader.notification".
type AMQPNotifier struct {
	publisher      Publisher
	exchange       string
	logger         Logger
	publishTimeout time.Duration
	now            func() time.Time
	closers        []func() error
}

func NewAMQPNotifier(publisher Publisher, exchange string, logger Logger) *AMQPNotifier {
	return &AMQPNotifier{
		publisher:      publisher,
		exchange:       exchange,
		logger:         logger,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
	}
}

// DialAMQPNotifier connects to the broker at url and declares the durable topic exchange.
func DialAMQPNotifier(url, exchange string, logger Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Join(ErrDialingBrokerFailed, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Join(ErrOpeningChannelFailed, err)
	}

	if err = ch.ExchangeDeclare(exchange, exchangeKindTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Join(ErrDeclaringExchangeFailed, err)
	}

	n := NewAMQPNotifier(ch, exchange, logger)
	n.closers = []func() error{ch.Close, conn.Close}

	return n, nil
}

func (n *AMQPNotifier) Notify(userID, message string) {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(Envelope{
		Type:      eventTypeNotification,
		Timestamp: n.now().UTC(),
		Payload:   NotificationPayload{UserID: userID, Message: message},
	})
	if err != nil {
		n.warn(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.publishTimeout)
	defer cancel()

	err = n.publisher.PublishWithContext(ctx, n.exchange, routingKeyReader, false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now().UTC(),
		Type:         eventTypeNotification,
		Body:         body,
	})
	if err != nil {
		n.warn(err)
	}
}

// Close closes the channel and connection opened by DialAMQPNotifier.
func (n *AMQPNotifier) Close() error {
	var errs []error
	for _, closeFn := range n.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func (n *AMQPNotifier) warn(err error) {
	if n.logger != nil {
		n.logger.Warn(logMsgPublishFailed, logAttrRoutingKey, routingKeyReader, logAttrError, err.Error())
	}
}
