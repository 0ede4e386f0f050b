package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth/forecast-engine/ledger"
)

func jan(day int) ledger.Date { return ledger.NewDate(2024, time.January, day) }

func fixedClock(d ledger.Date) ledger.Clock {
	return func() ledger.Date { return d }
}

func newTestDocument(t *testing.T) (*Document, *ledger.Account, *ledger.Account) {
	t.Helper()
	doc := New(nil, fixedClock(jan(1)))
	checking, err := doc.AddAccount("Checking", "USD", ledger.AccountAsset)
	require.NoError(t, err)
	groceries, err := doc.AddAccount("Groceries", "USD", ledger.AccountExpense)
	require.NoError(t, err)
	return doc, checking, groceries
}

func transfer(date ledger.Date, from, to *ledger.Account, value float64) *ledger.Transaction {
	return &ledger.Transaction{
		Date:        date,
		Description: "transfer",
		Splits: []*ledger.Split{
			{Account: to, Amount: ledger.NewAmount(value, "USD")},
			{Account: from, Amount: ledger.NewAmount(-value, "USD")},
		},
	}
}

func TestDocumentPostAndBalances(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)

	require.NoError(t, doc.AddTransaction(transfer(jan(5), checking, groceries, 20)))
	require.NoError(t, doc.AddTransaction(transfer(jan(10), checking, groceries, 30)))

	entries, err := doc.EntriesFor("Groceries")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Balance.Equal(ledger.NewAmount(50, "USD")))

	entries, err = doc.EntriesFor("Checking")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Balance.Equal(ledger.NewAmount(-50, "USD")))

	if _, err := doc.EntriesFor("Nope"); err != ledger.ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDocumentRejectsUnbalancedTransaction(t *testing.T) {
	doc, _, groceries := newTestDocument(t)

	txn := &ledger.Transaction{
		Date:   jan(5),
		Splits: []*ledger.Split{{Account: groceries, Amount: ledger.NewAmount(20, "USD")}},
	}
	err := doc.AddTransaction(txn)
	assert.ErrorIs(t, err, ledger.ErrUnbalancedTransaction)
	assert.Empty(t, doc.Transactions())
}

func TestDocumentRemoveTransactionRecooks(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)

	require.NoError(t, doc.AddTransaction(transfer(jan(5), checking, groceries, 20)))
	second := transfer(jan(10), checking, groceries, 30)
	second.ID = "t2"
	require.NoError(t, doc.AddTransaction(second))

	require.NoError(t, doc.RemoveTransaction("t2"))
	assert.Len(t, doc.Transactions(), 1)

	entries, err := doc.EntriesFor("Groceries")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Balance.Equal(ledger.NewAmount(20, "USD")))

	assert.ErrorIs(t, doc.RemoveTransaction("missing"), ErrTransactionNotFound)
}

func TestDocumentScheduleLifecycle(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)

	ref := transfer(jan(5), checking, groceries, 10)
	rec := ledger.NewRecurrence("rent", ref, ledger.RepeatWeekly, 1)
	require.NoError(t, doc.AddSchedule(rec))
	until := jan(31)
	require.NoError(t, doc.Cook(nil, &until))

	// Jan 5, 12, 19, 26.
	require.Len(t, doc.Transactions(), 4)

	require.NoError(t, doc.ScheduleDeleteDate("rent", jan(12)))
	assert.Len(t, doc.Transactions(), 3)

	exception := transfer(jan(19), checking, groceries, 99)
	require.NoError(t, doc.ScheduleAddException("rent", jan(19), exception))
	var seen *ledger.Transaction
	for _, txn := range doc.Transactions() {
		if txn.Date.Equal(jan(19)) {
			seen = txn
		}
	}
	require.NotNil(t, seen)
	assert.True(t, seen.Splits[0].Amount.Equal(ledger.NewAmount(99, "USD")))

	require.NoError(t, doc.ScheduleSetStopDate("rent", jan(20)))
	assert.Len(t, doc.Transactions(), 2)

	require.NoError(t, doc.RemoveSchedule("rent"))
	assert.Empty(t, doc.Transactions())

	assert.ErrorIs(t, doc.RemoveSchedule("rent"), ErrScheduleNotFound)
	assert.ErrorIs(t, doc.ScheduleDeleteDate("rent", jan(12)), ErrScheduleNotFound)
}

func TestDocumentBudgetSpawnsAndAllocation(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)
	require.NoError(t, doc.SetBudgetPeriod(jan(1), ledger.RepeatMonthly, 1))

	budget := ledger.NewBudget("food", groceries, ledger.NewAmount(100, "USD"), jan(1), ledger.RepeatMonthly)
	require.NoError(t, doc.AddBudget(budget))
	require.NoError(t, doc.AddTransaction(transfer(jan(5), checking, groceries, 40)))

	until := ledger.NewDate(2024, time.February, 29)
	require.NoError(t, doc.Cook(nil, &until))

	var spawns []*ledger.Transaction
	for _, txn := range doc.Transactions() {
		if txn.IsBudgetSpawn() {
			spawns = append(spawns, txn)
		}
	}
	require.Len(t, spawns, 2)
	// January's remainder after the 40 spent, then February untouched.
	assert.Equal(t, "60", spawns[0].Splits[0].Amount.Value.String())
	assert.Equal(t, "100", spawns[1].Splits[0].Amount.Value.String())

	periods, err := doc.BudgetPeriods("food")
	require.NoError(t, err)
	assert.Len(t, periods, 2)

	feb := ledger.NewDateRange(ledger.NewDate(2024, time.February, 1), ledger.NewDate(2024, time.February, 29))
	allocated, err := doc.BudgetedAmount("Groceries", feb, "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "100", allocated.Value.String())

	_, err = doc.BudgetPeriods("missing")
	assert.ErrorIs(t, err, ErrBudgetNotFound)

	require.NoError(t, doc.RemoveBudget("food"))
	assert.ErrorIs(t, doc.RemoveBudget("food"), ErrBudgetNotFound)
}

func TestSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)
	require.NoError(t, doc.SetBudgetPeriod(jan(1), ledger.RepeatMonthly, 1))

	require.NoError(t, doc.AddTransaction(transfer(jan(5), checking, groceries, 20)))
	ref := transfer(jan(1), checking, groceries, 10)
	require.NoError(t, doc.AddSchedule(ledger.NewRecurrence("rent", ref, ledger.RepeatMonthly, 1)))
	budget := ledger.NewBudget("food", groceries, ledger.NewAmount(100, "USD"), jan(1), ledger.RepeatMonthly)
	require.NoError(t, doc.AddBudget(budget))

	snap := doc.Snapshot()

	// Edits after the snapshot must not leak into it.
	require.NoError(t, doc.AddTransaction(transfer(jan(10), checking, groceries, 30)))
	require.NoError(t, doc.ScheduleDeleteDate("rent", ledger.NewDate(2024, time.February, 1)))
	override := ledger.NewAmount(150, "USD")
	require.NoError(t, doc.BudgetAddException("food", ledger.NewDate(2024, time.March, 1),
		ledger.BudgetException{Amount: &override}))

	assert.Len(t, snap.Transactions, 1)
	assert.Empty(t, snap.Schedules[0].DeletedDates())
	assert.Empty(t, snap.Budgets[0].Exceptions())

	// The copies are detached objects, not the live ones.
	assert.NotSame(t, budget, snap.Budgets[0])
	snap.Schedules[0].DeleteDate(jan(1))
	require.Len(t, doc.Schedules(), 1)
	assert.False(t, doc.Schedules()[0].DeletedDates()[jan(1)])
}

func TestDocumentContinueCookingExtendsHorizon(t *testing.T) {
	doc, checking, groceries := newTestDocument(t)

	ref := transfer(jan(1), checking, groceries, 10)
	require.NoError(t, doc.AddSchedule(ledger.NewRecurrence("rent", ref, ledger.RepeatMonthly, 1)))
	until := jan(31)
	require.NoError(t, doc.Cook(nil, &until))
	require.Len(t, doc.Transactions(), 1)

	require.NoError(t, doc.ContinueCooking(ledger.NewDate(2024, time.March, 31)))
	assert.Len(t, doc.Transactions(), 3)
	assert.True(t, doc.CookedUntil().Equal(ledger.NewDate(2024, time.March, 31)))
}
