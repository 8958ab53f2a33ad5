package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"MiniBase/internal/platform/logging"
	"MiniBase/internal/platform/messaging/zeromq/listener"
	"MiniBase/internal/platform/messaging/zeromq/message"
	"MiniBase/internal/platform/messaging/zeromq/publisher"
)

type openKey struct {
	instance string
	id       int32
}

// Tally follows the transaction events of one or more instances.
type Tally struct {
	mu     sync.Mutex
	counts map[string]int
	open   map[openKey]float64
}

func NewTally() *Tally {
	return &Tally{counts: map[string]int{}, open: map[openKey]float64{}}
}

func (t *Tally) Observe(m message.TransactionEventMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[m.Topic]++
	k := openKey{instance: m.InstanceId, id: m.TransId}
	switch m.Topic {
	case publisher.BeginTopic:
		t.open[k] = m.Timestamp
	case publisher.CommitTopic, publisher.AbortTopic:
		delete(t.open, k)
	}
}

func (t *Tally) Count(topic string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[topic]
}

// Open lists the transaction ids of instance that began but have not finished.
func (t *Tally) Open(instance string) []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := []int32{}
	for k := range t.open {
		if k.instance == instance {
			ids = append(ids, k.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func main() {
	endpoint := flag.String("endpoint", "tcp://localhost:7000", "Transaction events endpoint")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()
	logger := logging.NewLogger(*level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := listener.NewTransactionEventListener(ctx, *endpoint, logger,
		publisher.BeginTopic, publisher.CommitTopic, publisher.AbortTopic)
	if err != nil {
		logger.Fatal().Err(err).Str("endpoint", *endpoint).Msg("failed to subscribe")
	}
	defer l.Close()

	tally := NewTally()
	logger.Info().Str("endpoint", *endpoint).Msg("watching transactions")
	l.Listen(func(m message.TransactionEventMessage) {
		tally.Observe(m)
		logger.Info().
			Str("instance_id", m.InstanceId).
			Int32("trans_id", m.TransId).
			Str("type", m.Type).
			Int("open", len(tally.Open(m.InstanceId))).
			Msg("transaction event")
	})
	logger.Info().
		Int("begun", tally.Count(publisher.BeginTopic)).
		Int("committed", tally.Count(publisher.CommitTopic)).
		Int("aborted", tally.Count(publisher.AbortTopic)).
		Msg("monitor stopped")
}
