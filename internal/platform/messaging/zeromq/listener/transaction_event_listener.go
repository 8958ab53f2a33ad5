package listener

import (
	"context"
	"errors"
	"fmt"

	"MiniBase/internal/platform/messaging/zeromq/message"

	"github.com/go-zeromq/zmq4"
	json "github.com/json-iterator/go"
	"github.com/phuslu/log"
)

// TransactionEventListener follows the transaction events of another instance.
type TransactionEventListener struct {
	sub    zmq4.Socket
	logger log.Logger
}

func NewTransactionEventListener(ctx context.Context, endpoint string, logger log.Logger, topics ...string) (*TransactionEventListener, error) {
	sub := zmq4.NewSub(ctx)
	for _, topic := range topics {
		if err := sub.SetOption(zmq4.OptionSubscribe, topic); err != nil {
			sub.Close()
			return nil, err
		}
	}
	if err := sub.Dial(endpoint); err != nil {
		sub.Close()
		return nil, fmt.Errorf("connecting to %s: %w", endpoint, err)
	}
	return &TransactionEventListener{sub: sub, logger: logger}, nil
}

// Listen delivers events until the socket closes or its context ends.
func (l *TransactionEventListener) Listen(handle func(message.TransactionEventMessage)) {
	for {
		msg, err := l.sub.Recv()
		if err != nil {
			if errors.Is(err, zmq4.ErrClosedConn) || errors.Is(err, context.Canceled) {
				return
			}
			l.logger.Warn().Err(err).Msg("error receiving transaction event")
			return
		}
		if len(msg.Frames) < 2 {
			continue
		}
		m, err := unmarshalTransactionEventMessage(msg.Frames[1])
		if err != nil {
			l.logger.Warn().Err(err).Msg("dropping malformed transaction event")
			continue
		}
		m.Topic = string(msg.Frames[0])
		handle(m)
	}
}

func (l *TransactionEventListener) Close() error {
	return l.sub.Close()
}

func unmarshalTransactionEventMessage(data []byte) (message.TransactionEventMessage, error) {
	var m message.TransactionEventMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return message.TransactionEventMessage{}, fmt.Errorf("error unmarshalling transaction event: %w", err)
	}
	return m, nil
}
