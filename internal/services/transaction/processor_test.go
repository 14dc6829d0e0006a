package transaction

import (
	"context"
	"errors"
	"testing"

	"walletledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Transfer(t *testing.T) {
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 100)
	l.wallets.seed("bob", "WB", "USD", 5)

	tx := l.store(t, models.NewTransferTransaction("WA", request("WB", 20, "USD")))

	require.NoError(t, l.processor.ProcessTransaction(context.Background(), tx.TransactionID))

	assert.True(t, decimal.NewFromInt(80).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.True(t, decimal.NewFromInt(25).Equal(l.wallets.balance(t, "bob", "USD")))
	assert.Equal(t, models.TransactionStatusProceed, l.transactions.get(t, tx.TransactionID).TransactionStatus)
	assert.Equal(t, []models.TransactionStatus{models.TransactionStatusProceed}, l.publisher.statusesFor(tx.TransactionID))
	assert.ElementsMatch(t, []string{"alice", "bob"}, l.cache.invalidated)

	require.Len(t, l.wallets.sessions, 2)
	require.NotNil(t, l.wallets.sessions[0])
	assert.Same(t, l.wallets.sessions[0], l.wallets.sessions[1])
}

func TestProcessor_FailedSecondWriteUndoesFirst(t *testing.T) {
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 100)
	l.wallets.seed("bob", "WB", "USD", 5)
	l.wallets.failWrites["bob"] = errors.New("deadlock detected")

	tx := l.store(t, models.NewTransferTransaction("WA", request("WB", 20, "USD")))

	err := l.processor.ProcessTransaction(context.Background(), tx.TransactionID)

	require.Error(t, err)
	assert.Equal(t, 1, l.wallets.writes, "alice is written before bob fails")
	assert.True(t, decimal.NewFromInt(100).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.True(t, decimal.NewFromInt(5).Equal(l.wallets.balance(t, "bob", "USD")))
	assert.Equal(t, models.TransactionStatusQueued, l.transactions.get(t, tx.TransactionID).TransactionStatus)
	assert.Empty(t, l.publisher.statuses)
	assert.Empty(t, l.cache.invalidated)
	assert.Empty(t, l.outbox.pending())

	delete(l.wallets.failWrites, "bob")
	require.NoError(t, l.processor.ProcessTransaction(context.Background(), tx.TransactionID))
	assert.True(t, decimal.NewFromInt(80).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.True(t, decimal.NewFromInt(25).Equal(l.wallets.balance(t, "bob", "USD")))
}

func TestProcessor_RechargeAndPayment(t *testing.T) {
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 10, "EUR", 0)

	recharge := l.store(t, models.NewRechargeTransaction(request("WA", 15, "eur")))
	payment := l.store(t, models.NewPaymentTransaction(request("WA", 4, "USD")))

	require.NoError(t, l.processor.ProcessTransaction(context.Background(), recharge.TransactionID))
	require.NoError(t, l.processor.ProcessTransaction(context.Background(), payment.TransactionID))

	assert.True(t, decimal.NewFromInt(15).Equal(l.wallets.balance(t, "alice", "EUR")))
	assert.True(t, decimal.NewFromInt(6).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.Equal(t, models.TransactionStatusProceed, l.transactions.get(t, recharge.TransactionID).TransactionStatus)
	assert.Equal(t, models.TransactionStatusProceed, l.transactions.get(t, payment.TransactionID).TransactionStatus)
}

func TestProcessor_BusinessFailures(t *testing.T) {
	tests := []struct {
		name     string
		tx       func() *models.Transaction
		wantCode string
	}{
		{
			name:     "transfer to same wallet",
			tx:       func() *models.Transaction { return models.NewTransferTransaction("WA", request("WA", 10, "USD")) },
			wantCode: FailureSenderAndRecipientSame,
		},
		{
			name:     "transfer from unknown wallet",
			tx:       func() *models.Transaction { return models.NewTransferTransaction("WX", request("WA", 10, "USD")) },
			wantCode: FailureSenderWalletNotExist,
		},
		{
			name:     "transfer to unknown wallet",
			tx:       func() *models.Transaction { return models.NewTransferTransaction("WA", request("WX", 10, "USD")) },
			wantCode: FailureRecipientWalletNotExist,
		},
		{
			name:     "transfer without sender account",
			tx:       func() *models.Transaction { return models.NewTransferTransaction("WA", request("WB", 10, "GBP")) },
			wantCode: FailureSenderAccountNotExist,
		},
		{
			name:     "transfer without recipient account",
			tx:       func() *models.Transaction { return models.NewTransferTransaction("WA", request("WB", 10, "EUR")) },
			wantCode: FailureRecipientAccountNotExist,
		},
		{
			name:     "recharge of unknown wallet",
			tx:       func() *models.Transaction { return models.NewRechargeTransaction(request("WX", 10, "USD")) },
			wantCode: FailureWalletNotExist,
		},
		{
			name:     "recharge without account",
			tx:       func() *models.Transaction { return models.NewRechargeTransaction(request("WB", 10, "EUR")) },
			wantCode: FailureRecipientAccountNotExist,
		},
		{
			name:     "payment from unknown wallet",
			tx:       func() *models.Transaction { return models.NewPaymentTransaction(request("WX", 10, "USD")) },
			wantCode: FailureWalletNotExist,
		},
		{
			name:     "payment without account",
			tx:       func() *models.Transaction { return models.NewPaymentTransaction(request("WB", 10, "EUR")) },
			wantCode: FailureSenderAccountNotExist,
		},
		{
			name: "unknown transaction type",
			tx: func() *models.Transaction {
				tx := models.NewTransferTransaction("WA", request("WB", 10, "USD"))
				tx.TransactionType = "Refund"
				return tx
			},
			wantCode: FailureUnhandledType,
		},
		{
			name: "revert without parent",
			tx: func() *models.Transaction {
				original := models.NewTransferTransaction("WA", request("WB", 10, "USD"))
				return models.NewRevertTransaction(original)
			},
			wantCode: FailureParentTransactionNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			l.wallets.seed("alice", "WA", "USD", 100, "EUR", 50)
			l.wallets.seed("bob", "WB", "USD", 5)

			tx := l.store(t, tt.tx())

			err := l.processor.ProcessTransaction(context.Background(), tx.TransactionID)
			require.NoError(t, err)

			stored := l.transactions.get(t, tx.TransactionID)
			assert.Equal(t, models.TransactionStatusFailed, stored.TransactionStatus)
			require.NotNil(t, stored.FailureCode)
			assert.Equal(t, tt.wantCode, *stored.FailureCode)

			assert.Zero(t, l.wallets.writes)
			assert.Empty(t, l.cache.invalidated)
			assert.True(t, decimal.NewFromInt(100).Equal(l.wallets.balance(t, "alice", "USD")))
			assert.True(t, decimal.NewFromInt(5).Equal(l.wallets.balance(t, "bob", "USD")))
			assert.Equal(t, []models.TransactionStatus{models.TransactionStatusFailed}, l.publisher.statusesFor(tx.TransactionID))
		})
	}
}

func TestProcessor_IsIdempotent(t *testing.T) {
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 100)
	l.wallets.seed("bob", "WB", "USD", 5)

	tx := l.store(t, models.NewTransferTransaction("WA", request("WB", 20, "USD")))

	require.NoError(t, l.processor.ProcessTransaction(context.Background(), tx.TransactionID))
	writes := l.wallets.writes

	require.NoError(t, l.processor.ProcessTransaction(context.Background(), tx.TransactionID))

	assert.Equal(t, writes, l.wallets.writes)
	assert.True(t, decimal.NewFromInt(80).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.Len(t, l.publisher.statusesFor(tx.TransactionID), 1)
}

func TestProcessor_AcknowledgesEmptyAndUnknownIDs(t *testing.T) {
	l := newLedger()

	assert.NoError(t, l.processor.ProcessTransaction(context.Background(), ""))
	assert.NoError(t, l.processor.ProcessTransaction(context.Background(), "does-not-exist"))
	assert.Empty(t, l.publisher.statuses)
}

func TestProcessor_TransientErrorIsReturned(t *testing.T) {
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 100)
	l.wallets.seed("bob", "WB", "USD", 5)
	l.wallets.numberErr = errors.New("connection refused")

	tx := l.store(t, models.NewTransferTransaction("WA", request("WB", 20, "USD")))

	err := l.processor.ProcessTransaction(context.Background(), tx.TransactionID)

	assert.Error(t, err)
	assert.Equal(t, models.TransactionStatusQueued, l.transactions.get(t, tx.TransactionID).TransactionStatus)
	assert.Empty(t, l.publisher.statuses)
	assert.Zero(t, l.wallets.writes)
}

func TestProcessor_CancelSettledTransferAndRevert(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 100)
	l.wallets.seed("bob", "WB", "USD", 5)

	tx := l.store(t, models.NewTransferTransaction("WA", request("WB", 20, "USD")))
	require.NoError(t, l.processor.ProcessTransaction(ctx, tx.TransactionID))

	revert, err := l.service.CancelTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusQueuedForRevert, l.transactions.get(t, tx.TransactionID).TransactionStatus)
	assert.Contains(t, l.publisher.queued, revert.TransactionID)

	require.NoError(t, l.processor.ProcessTransaction(ctx, revert.TransactionID))

	assert.True(t, decimal.NewFromInt(100).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.True(t, decimal.NewFromInt(5).Equal(l.wallets.balance(t, "bob", "USD")))
	assert.Equal(t, models.TransactionStatusProceed, l.transactions.get(t, revert.TransactionID).TransactionStatus)
	assert.Equal(t, models.TransactionStatusReverted, l.transactions.get(t, tx.TransactionID).TransactionStatus)
	assert.Equal(t, []models.TransactionStatus{
		models.TransactionStatusProceed,
		models.TransactionStatusQueuedForRevert,
		models.TransactionStatusReverted,
	}, l.publisher.statusesFor(tx.TransactionID))
}

func TestProcessor_RevertOfPayment(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	l.wallets.seed("alice", "WA", "USD", 30)

	tx := l.store(t, models.NewPaymentTransaction(request("WA", 12, "USD")))
	require.NoError(t, l.processor.ProcessTransaction(ctx, tx.TransactionID))
	require.True(t, decimal.NewFromInt(18).Equal(l.wallets.balance(t, "alice", "USD")))

	revert, err := l.service.CancelTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.NoWallet, revert.FromWallet)
	assert.Equal(t, "WA", revert.ToWallet)

	require.NoError(t, l.processor.ProcessTransaction(ctx, revert.TransactionID))

	assert.True(t, decimal.NewFromInt(30).Equal(l.wallets.balance(t, "alice", "USD")))
	assert.Equal(t, models.TransactionStatusReverted, l.transactions.get(t, tx.TransactionID).TransactionStatus)
}

func TestSortedLegs(t *testing.T) {
	assert.Equal(t, []string{"WA", "WB"}, sortedLegs("WB", "WA"))
	assert.Equal(t, []string{"WA"}, sortedLegs(models.NoWallet, "WA"))
	assert.Equal(t, []string{"WA"}, sortedLegs("WA", "WA"))
}
