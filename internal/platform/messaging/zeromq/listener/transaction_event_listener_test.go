package listener

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"MiniBase/internal/platform/logging"
	"MiniBase/internal/platform/messaging/zeromq/message"

	"github.com/go-zeromq/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackEndpoint(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return fmt.Sprintf("tcp://127.0.0.1:%d", port)
}

func TestUnmarshalTransactionEventMessage(t *testing.T) {
	m, err := unmarshalTransactionEventMessage([]byte(`{"trans_id":4,"type":"BEGIN","timestamp":1.5,"instance_id":"node-b"}`))
	require.NoError(t, err)
	assert.Equal(t, message.TransactionEventMessage{TransId: 4, Type: "BEGIN", Timestamp: 1.5, InstanceId: "node-b"}, m)

	_, err = unmarshalTransactionEventMessage([]byte("{"))
	assert.Error(t, err)
}

func TestListenDeliversSubscribedEvents(t *testing.T) {
	endpoint := loopbackEndpoint(t)
	pub := zmq4.NewPub(context.Background())
	require.NoError(t, pub.Listen(endpoint))
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	l, err := NewTransactionEventListener(ctx, endpoint, logging.Discard(), "commit")
	require.NoError(t, err)

	received := make(chan message.TransactionEventMessage, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Listen(func(m message.TransactionEventMessage) {
			select {
			case received <- m:
			default:
			}
		})
	}()

	// the subscription is only active once the connection is up, so keep sending
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	var got message.TransactionEventMessage
	for got.TransId == 0 {
		require.NoError(t, pub.Send(zmq4.NewMsgFrom([]byte("commit"), []byte("not json"))))
		require.NoError(t, pub.Send(zmq4.NewMsgFrom([]byte("abort"), []byte(`{"trans_id":8,"type":"ABORT"}`))))
		require.NoError(t, pub.Send(zmq4.NewMsgFrom([]byte("commit"), []byte(`{"trans_id":9,"type":"COMMIT","instance_id":"node-b"}`))))
		select {
		case got = <-received:
		case <-ticker.C:
		case <-ctx.Done():
			t.Fatalf("no transaction event received")
		}
	}

	assert.Equal(t, message.TransactionEventMessage{TransId: 9, Type: "COMMIT", InstanceId: "node-b", Topic: "commit"}, got)

	require.NoError(t, l.Close())
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("listener did not stop after close")
	}
	close(received)
	for m := range received {
		assert.Equal(t, int32(9), m.TransId)
	}
}
