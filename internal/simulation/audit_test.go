package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Reconcile(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	l := NewLedger(100000)

	capital := 100000.0
	l.RecordEntry(date, "a-1", 245.30, 1.00)
	capital -= 245.30 + 1.00
	l.RecordEntry(date, "b-1", -750.00, 7.10)
	capital -= -750.00 + 7.10
	l.Tick()
	require.NoError(t, l.Reconcile(capital, 1e-9))

	l.RecordExit(date.AddDate(0, 0, 3), "a-1", 1000, 1.00, 1000-245.30-1-1, "EXPIRATION")
	capital += 1000 - 1.00
	l.Tick()
	require.NoError(t, l.Reconcile(capital, 1e-9))

	assert.InDelta(t, 9.10, l.TotalFees().InexactFloat64(), 1e-12)
	assert.InDelta(t, 752.70, l.TotalRealized().InexactFloat64(), 1e-12)
	assert.Equal(t, int64(2), l.Ticks())
	assert.Len(t, l.FeesPaid(), 3)
	require.Len(t, l.RealizedHistory(), 1)
	assert.Equal(t, "EXPIRATION", l.RealizedHistory()[0].Reason)
}

func TestLedger_Mismatch(t *testing.T) {
	l := NewLedger(100000)
	l.RecordEntry(time.Now(), "a-1", 500, 1)

	err := l.Reconcile(100000, 1e-6)
	assert.ErrorIs(t, err, ErrAuditMismatch)
}

func TestLedger_HistoryIsCopied(t *testing.T) {
	l := NewLedger(1000)
	l.RecordEntry(time.Now(), "a-1", 10, 1)
	fees := l.FeesPaid()
	fees[0].Amount = 99
	assert.Equal(t, 1.0, l.FeesPaid()[0].Amount)
}

func TestMarginRequirement(t *testing.T) {
	strangle := mustStrangle(t)
	assert.InDelta(t, 20000.0, MarginRequirement(strangle, 100, 0.20), 1e-9)

	short := mustFuture(t, "f-1", -2, 50, time.Now())
	assert.InDelta(t, 0.20*2*4000*50, MarginRequirement(short, 4000, 0.20), 1e-9)

	long := mustFuture(t, "f-2", 2, 50, time.Now())
	assert.Zero(t, MarginRequirement(long, 4000, 0.20))
}
