package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseAccount(name string) *Account {
	return &Account{Name: name, Currency: "USD", Type: AccountExpense}
}

func TestBudgetSpawnPeriodAnchoring(t *testing.T) {
	clothing := newExpenseAccount("Clothing")
	budget := NewBudget("b1", clothing, NewAmount(100, "USD"), NewDate(2024, time.January, 1), RepeatMonthly)

	spawns, err := budget.Spawns(NewDate(2024, time.March, 31), nil, NewConsumedSet(), NewDate(2023, time.December, 31), nil)
	require.NoError(t, err)
	require.Len(t, spawns, 3)

	// Recurrence date is the period start, effective date the period end.
	assert.True(t, spawns[0].RecurrenceDate().Equal(NewDate(2024, time.January, 1)))
	assert.True(t, spawns[0].Date().Equal(NewDate(2024, time.January, 31)))
	assert.True(t, spawns[1].Date().Equal(NewDate(2024, time.February, 29)))
	assert.True(t, spawns[2].Date().Equal(NewDate(2024, time.March, 31)))
}

func TestBudgetSpawnAdjustedByActualSpending(t *testing.T) {
	expense := newExpenseAccount("Some Expense")
	budget := NewBudget("b1", expense, NewAmount(100, "USD"), NewDate(2008, time.January, 1), RepeatMonthly)
	today := NewDate(2008, time.January, 27)

	txns := []*Transaction{txnTouching(expense, NewDate(2008, time.January, 27), 42)}
	spawns, err := budget.Spawns(NewDate(2008, time.February, 29), txns, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 2)

	jan, err := spawns[0].Txn.AmountForAccount(expense, "USD", nil)
	require.NoError(t, err)
	assert.True(t, jan.Equal(NewAmount(58, "USD")), "january allocation should be 100-42, got %s", jan)

	feb, err := spawns[1].Txn.AmountForAccount(expense, "USD", nil)
	require.NoError(t, err)
	assert.True(t, feb.Equal(NewAmount(100, "USD")), "february untouched, got %s", feb)
}

func TestBustedBudgetPeriod(t *testing.T) {
	expense := newExpenseAccount("Groceries")
	budget := NewBudget("b1", expense, NewAmount(100, "USD"), NewDate(2024, time.June, 1), RepeatMonthly)
	today := NewDate(2024, time.May, 31)

	txns := []*Transaction{txnTouching(expense, NewDate(2024, time.June, 1), 142)}
	spawns, err := budget.Spawns(NewDate(2024, time.June, 30), txns, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 1)

	amount, err := spawns[0].Txn.AmountForAccount(expense, "USD", nil)
	require.NoError(t, err)
	assert.True(t, amount.IsZero(), "busted period must show no further allocation")

	// The period stays retrievable with its real difference and carry.
	assert.True(t, spawns[0].DifferenceInBudget.Equal(NewAmount(-42, "USD")))
	assert.True(t, spawns[0].CarryAmount.Equal(NewAmount(-42, "USD")))
	assert.Len(t, budget.AllSpawns(), 1)
}

func TestBudgetPastPeriodsForcedToZeroButSeedCarry(t *testing.T) {
	expense := newExpenseAccount("Dining")
	budget := NewBudget("b1", expense, NewAmount(1000, "USD"), NewDate(2024, time.January, 1), RepeatMonthly)
	today := NewDate(2024, time.March, 15) // jan and feb are fully past

	var txns []*Transaction
	for _, month := range []time.Month{time.January, time.February, time.March} {
		txns = append(txns, txnTouching(expense, NewDate(2024, month, 10), 100))
	}
	spawns, err := budget.Spawns(NewDate(2024, time.April, 30), txns, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 4)

	for _, spawn := range spawns[:2] {
		amount, err := spawn.Txn.AmountForAccount(expense, "USD", nil)
		require.NoError(t, err)
		assert.True(t, amount.IsZero(), "past period %s must not project spend", spawn.Date())
		assert.True(t, spawn.DifferenceInBudget.Equal(NewAmount(900, "USD")))
	}
	// Carry accumulated through the past periods.
	assert.True(t, spawns[2].CarryAmount.Equal(NewAmount(2700, "USD")))

	march, err := spawns[2].Txn.AmountForAccount(expense, "USD", nil)
	require.NoError(t, err)
	assert.True(t, march.Equal(NewAmount(900, "USD")))
}

func TestBudgetCarryPropagationWithReset(t *testing.T) {
	expense := newExpenseAccount("Travel")
	budget := NewBudget("b1", expense, NewAmount(1000, "USD"), NewDate(2024, time.January, 1), RepeatMonthly)
	budget.AddException(NewDate(2024, time.July, 1), BudgetException{CarryReset: true})
	today := NewDate(2023, time.December, 31)

	var txns []*Transaction
	for month := time.January; month <= time.August; month++ {
		txns = append(txns, txnTouching(expense, NewDate(2024, month, 5), 100))
	}
	spawns, err := budget.Spawns(NewDate(2024, time.August, 31), txns, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 8)

	// Periods 1-6 accumulate carry = n * 900.
	for i := 0; i < 6; i++ {
		want := NewAmount(float64(900*(i+1)), "USD")
		assert.True(t, spawns[i].CarryAmount.Equal(want),
			"period %d carry = %s, want %s", i+1, spawns[i].CarryAmount, want)
		assert.False(t, spawns[i].CarryReset)
	}
	// Period 7 resets: carry is its own difference alone.
	assert.True(t, spawns[6].CarryReset)
	assert.True(t, spawns[6].CarryAmount.Equal(NewAmount(900, "USD")))
	// Period 8 resumes accumulation from the reset point.
	assert.True(t, spawns[7].CarryAmount.Equal(NewAmount(1800, "USD")))
}

func TestBudgetExceptionOverridesAmount(t *testing.T) {
	expense := newExpenseAccount("Gifts")
	budget := NewBudget("b1", expense, NewAmount(100, "USD"), NewDate(2024, time.January, 1), RepeatMonthly)
	december := NewAmount(300, "USD")
	budget.AddException(NewDate(2024, time.December, 1), BudgetException{Amount: &december})
	today := NewDate(2023, time.December, 31)

	spawns, err := budget.Spawns(NewDate(2024, time.December, 31), nil, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 12)

	assert.True(t, spawns[10].BudgetAmount.Equal(NewAmount(100, "USD")))
	assert.True(t, spawns[11].BudgetAmount.Equal(NewAmount(300, "USD")))
}

func TestIncomeBudgetFlipsSign(t *testing.T) {
	salary := &Account{Name: "Salary", Currency: "USD", Type: AccountIncome}
	budget := NewBudget("b1", salary, NewAmount(5000, "USD"), NewDate(2024, time.January, 1), RepeatMonthly)
	today := NewDate(2023, time.December, 31)

	spawns, err := budget.Spawns(NewDate(2024, time.January, 31), nil, NewConsumedSet(), today, nil)
	require.NoError(t, err)
	require.Len(t, spawns, 1)

	// Income is credit-normal: the budgeted flow on the account is negative.
	assert.True(t, spawns[0].BudgetAmount.Equal(NewAmount(-5000, "USD")))
	amount, err := spawns[0].Txn.AmountForAccount(salary, "USD", nil)
	require.NoError(t, err)
	assert.True(t, amount.Equal(NewAmount(-5000, "USD")))
}
