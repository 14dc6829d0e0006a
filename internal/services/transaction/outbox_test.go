package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_DeliverDropsUndeliverableMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  models.OutboxMessage
	}{
		{name: "unknown kind", msg: models.OutboxMessage{Kind: "mystery", Payload: `{}`}},
		{name: "broken payload", msg: models.OutboxMessage{Kind: models.OutboxStatusChanged, Payload: `{"transaction_id":`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			msg := tt.msg
			require.NoError(t, l.outbox.Add(context.Background(), nil, &msg))

			n, err := l.relay().Flush(context.Background())

			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Empty(t, l.outbox.pending())
			assert.Empty(t, l.publisher.queued)
			assert.Empty(t, l.publisher.statuses)
		})
	}
}

func TestOutbox_StageDeliversOnlyAfterCommit(t *testing.T) {
	l := newLedger()
	sess := repositories.NewSession(nil)
	o := &outbox{repo: l.outbox, publisher: l.publisher, metrics: &NoopMetricsCollector{}}

	require.NoError(t, o.stage(context.Background(), sess, models.OutboxNewTransaction, models.NewTransactionQueued{TransactionID: "tx-1"}))
	assert.Empty(t, l.publisher.queued)
	require.Len(t, l.outbox.pending(), 1)

	sess.Complete(context.Background())
	assert.Equal(t, []string{"tx-1"}, l.publisher.queued)
	assert.Empty(t, l.outbox.pending())
}

func TestRelay_FlushSkipsFreshMessages(t *testing.T) {
	l := newLedger()
	l.publisher.err = errors.New("broker unavailable")
	sess := repositories.NewSession(nil)
	o := &outbox{repo: l.outbox, publisher: l.publisher, metrics: &NoopMetricsCollector{}}
	require.NoError(t, o.stage(context.Background(), sess, models.OutboxNewTransaction, models.NewTransactionQueued{TransactionID: "tx-1"}))
	sess.Complete(context.Background())
	require.Len(t, l.outbox.pending(), 1)
	l.publisher.err = nil

	relay := NewRelay(RelayConfig{Outbox: l.outbox, Publisher: l.publisher, MinAge: time.Minute})
	n, err := relay.Flush(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, l.outbox.pending(), 1)

	n, err = l.relay().Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"tx-1"}, l.publisher.queued)
}

func TestRelay_RunStopsWithContext(t *testing.T) {
	l := newLedger()
	relay := NewRelay(RelayConfig{Outbox: l.outbox, Publisher: l.publisher, Interval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestNewRelay_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewRelay(RelayConfig{Publisher: &recordingPublisher{}}) })
	assert.Panics(t, func() { NewRelay(RelayConfig{Outbox: &memOutbox{}}) })
}
