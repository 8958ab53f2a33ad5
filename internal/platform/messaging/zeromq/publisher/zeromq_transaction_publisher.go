package publisher

import (
	"context"
	"fmt"
	"sync"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/messaging/zeromq/message"

	"github.com/go-zeromq/zmq4"
	json "github.com/json-iterator/go"
	"github.com/phuslu/log"
)

const (
	BeginTopic  = "begin"
	CommitTopic = "commit"
	AbortTopic  = "abort"
)

// ZeroMQTransactionPublisher publishes transaction state changes on a PUB socket.
type ZeroMQTransactionPublisher struct {
	pub        zmq4.Socket
	instanceId string
	logger     log.Logger
	mu         sync.Mutex
}

func NewZeroMQTransactionPublisher(endpoint, instanceId string, logger log.Logger) (*ZeroMQTransactionPublisher, error) {
	socket := zmq4.NewPub(context.Background())
	if err := socket.Listen(endpoint); err != nil {
		socket.Close()
		return nil, fmt.Errorf("starting transaction publisher on %s: %w", endpoint, err)
	}
	logger.Info().Str("endpoint", endpoint).Str("instance_id", instanceId).Msg("started transaction publisher")
	return &ZeroMQTransactionPublisher{
		pub:        socket,
		instanceId: instanceId,
		logger:     logger,
	}, nil
}

// Topic maps a state log type to its topic. Image entries are not published.
func Topic(t domain.LogType) (string, bool) {
	switch t {
	case domain.LogBegin:
		return BeginTopic, true
	case domain.LogCommit:
		return CommitTopic, true
	case domain.LogAbort:
		return AbortTopic, true
	}
	return "", false
}

func (p *ZeroMQTransactionPublisher) Publish(event domain.TransactionEvent) error {
	topic, ok := Topic(event.Type)
	if !ok {
		return nil
	}
	payload, err := MarshalTransactionEventMessage(message.TransactionEventMessageFrom(event, p.instanceId))
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pub.Send(zmqMessage(topic, payload))
}

func (p *ZeroMQTransactionPublisher) Close() error {
	return p.pub.Close()
}

func zmqMessage(topic string, payload []byte) zmq4.Msg {
	return zmq4.NewMsgFrom([]byte(topic), payload)
}

func MarshalTransactionEventMessage(msg message.TransactionEventMessage) ([]byte, error) {
	return json.Marshal(msg)
}
