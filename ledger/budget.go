package ledger

// =============================================================================
// BUDGET - Forward-looking allocation for one account
// =============================================================================
//
// A budget yields spawns whose amounts depend on how much was already spent
// on the account. A monthly 100 budget for "Clothing" over a month holding
// 25 worth of clothing spawns a 75 allocation. Only future periods project
// an allocation, but past periods are still computed: they seed the
// carry-over that rolls unspent/overspent amounts forward.
//
// Period twist: a budget spawn's recurrence date is the period start, but
// its effective date is the period end. Cooking only proceeds up to a
// cutoff date, and a spawn must appear only once its full period is known,
// anchored at period end so running balances reflect the whole period.

// BudgetException overrides one period of a budget: a replacement budgeted
// amount, a carry-over reset, or both. This is the explicit struct-update
// shape for per-period edits; fields left nil/false keep nominal behavior.
type BudgetException struct {
	Amount     *Amount
	CarryReset bool
}

// BudgetSpawn is a budget-generated spawn with its period accounting:
//
//	BudgetAmount        nominal allocation for the period, exception-aware
//	DifferenceInBudget  BudgetAmount minus actual spend in the period
//	CarryAmount         running carry-over through this period
//	CarryReset          this period restarted carry accumulation
//
// Txn is the spawn transaction anchored at period end; its visible amount
// is the remaining allocation (zero for past or busted periods).
type BudgetSpawn struct {
	Txn                *Transaction
	BudgetAmount       Amount
	DifferenceInBudget Amount
	CarryAmount        Amount
	CarryReset         bool
}

func (bs *BudgetSpawn) RecurrenceDate() Date { return bs.Txn.Spawn.RecurrenceDate }
func (bs *BudgetSpawn) Date() Date           { return bs.Txn.Date }

// ConsumedSet tracks transactions already counted by a budget so budgets
// sharing an account never double-count. It is add-only: the engine adds
// while computing, callers just thread the same set through each call.
type ConsumedSet struct {
	members map[*Transaction]struct{}
}

func NewConsumedSet() *ConsumedSet {
	return &ConsumedSet{members: make(map[*Transaction]struct{})}
}

func (cs *ConsumedSet) Add(t *Transaction) { cs.members[t] = struct{}{} }

func (cs *ConsumedSet) Contains(t *Transaction) bool {
	_, ok := cs.members[t]
	return ok
}

func (cs *ConsumedSet) Len() int { return len(cs.members) }

// Budget is a recurrence whose spawns carry period accounting for one
// income or expense account.
type Budget struct {
	*Recurrence

	account    *Account
	amount     Amount
	Notes      string
	exceptions map[Date]BudgetException

	// Spawns from the latest Spawns call, all periods included. Prorated
	// allocation queries read from here.
	previousSpawns []*BudgetSpawn
}

func NewBudget(id string, account *Account, amount Amount, refDate Date, repeat RepeatType) *Budget {
	ref := &Transaction{Date: refDate}
	return &Budget{
		Recurrence: NewRecurrence(id, ref, repeat, 1),
		account:    account,
		amount:     amount,
		exceptions: make(map[Date]BudgetException),
	}
}

func (b *Budget) Account() *Account { return b.account }
func (b *Budget) Amount() Amount    { return b.amount }

func (b *Budget) SetAmount(a Amount)       { b.amount = a }
func (b *Budget) SetAccount(acc *Account)  { b.account = acc }

// AddException overrides the period starting at `recurrenceDate`.
// Exceptions stored against dates the rule never produces are inert.
func (b *Budget) AddException(recurrenceDate Date, exc BudgetException) {
	b.exceptions[recurrenceDate] = exc
}

func (b *Budget) Exceptions() map[Date]BudgetException { return b.exceptions }

// Copy returns a deep copy of the budget's persistable state. Computed
// spawns are not carried over; they are rebuilt by the next Spawns call.
func (b *Budget) Copy() *Budget {
	dup := &Budget{
		Recurrence: b.Recurrence.Copy(),
		account:    b.account,
		amount:     b.amount,
		Notes:      b.Notes,
		exceptions: make(map[Date]BudgetException, len(b.exceptions)),
	}
	for date, exc := range b.exceptions {
		if exc.Amount != nil {
			amount := *exc.Amount
			exc.Amount = &amount
		}
		dup.exceptions[date] = exc
	}
	return dup
}

// AllSpawns returns every period computed by the last Spawns call,
// including past and zero-amount periods, for budget-review use.
func (b *Budget) AllSpawns() []*BudgetSpawn { return b.previousSpawns }

// periodEnd returns the last day of the period starting at `start`: one day
// before the next occurrence, counted from the period start itself.
func (b *Budget) periodEnd(start Date) Date {
	it := NewDateIterator(start, b.repeat, b.every)
	it.Next() // the start date itself
	return it.Next().AddDays(-1)
}

// nominalAmount is the budgeted amount with account polarity applied:
// credit-normal accounts (income) budget a negative flow so the semantics
// stay "amount to be spent/received" regardless of polarity.
func (b *Budget) nominalAmount(base Amount) Amount {
	if b.account.IsCreditAccount() {
		return base.Neg()
	}
	return base
}

// Spawns computes the budget's periods up to `until` in period order,
// earliest first, and returns them all. Transactions in `txns` that touch
// the budget's account are consumed against their period; `consumed` is
// augmented so other budgets on the same account skip them. Past periods
// (ending on or before `today`) force a zero visible amount but keep their
// computed difference and carry for review.
//
// Carry propagation is strictly sequential: each period's carry depends on
// the previous one's, up to the nearest carry reset.
func (b *Budget) Spawns(until Date, txns []*Transaction, consumed *ConsumedSet, today Date, rate RateFunc) ([]*BudgetSpawn, error) {
	if b.account == nil {
		panic("budget references no account")
	}
	currency := b.amount.Currency
	nominal := b.nominalAmount(b.amount)

	// Transactions that can affect this budget and are still up for grabs.
	var pool []*Transaction
	for _, t := range txns {
		if t.Affects(b.account) && !consumed.Contains(t) {
			pool = append(pool, t)
		}
	}

	var spawns []*BudgetSpawn
	carry := Amount{Currency: currency}
	for _, start := range b.occurrences(until) {
		end := b.periodEnd(start)
		period := NewDateRange(start, end)

		exc, hasExc := b.exceptions[start]
		budgetAmount := nominal
		if hasExc && exc.Amount != nil {
			budgetAmount = b.nominalAmount(*exc.Amount)
		}

		spent := Amount{Currency: currency}
		remaining := pool[:0:0]
		for _, t := range pool {
			if !period.Contains(t.Date) {
				remaining = append(remaining, t)
				continue
			}
			amt, err := t.AmountForAccount(b.account, currency, rate)
			if err != nil {
				return nil, err
			}
			spent = spent.Add(amt)
			consumed.Add(t)
		}
		pool = remaining

		difference := budgetAmount.Sub(spent)
		if hasExc && exc.CarryReset {
			carry = difference
		} else {
			carry = carry.Add(difference)
		}

		visible := budgetAmount.Zero()
		if !spent.MagnitudeGTE(budgetAmount) {
			visible = budgetAmount.Sub(spent)
		}
		if end.BeforeOrEqual(today) {
			// Budgets never project spend into the past.
			visible = budgetAmount.Zero()
		}

		txn := &Transaction{
			Date:        end,
			Description: "Budget",
			Splits: []*Split{
				{Account: b.account, Amount: visible},
				{Account: nil, Amount: visible.Neg()},
			},
			Spawn: &SpawnInfo{SourceID: b.id, Kind: SpawnBudget, RecurrenceDate: start},
		}
		spawns = append(spawns, &BudgetSpawn{
			Txn:                txn,
			BudgetAmount:       budgetAmount,
			DifferenceInBudget: difference,
			CarryAmount:        carry,
			CarryReset:         hasExc && exc.CarryReset,
		})
	}
	b.previousSpawns = spawns
	return spawns, nil
}

// AmountForDateRange prorates the budget's remaining allocations over
// `dateRange`. Only the future part of each period participates: a period
// already underway is spread from tomorrow to its end.
//
// Spawns must have been generated (via Spawns) up to a date covering the
// range before calling this.
func (b *Budget) AmountForDateRange(dateRange DateRange, currency string, today Date, rate RateFunc) (Amount, error) {
	total := Amount{Currency: currency}
	for _, spawn := range b.previousSpawns {
		amount, err := spawn.Txn.AmountForAccount(b.account, currency, rate)
		if err != nil {
			return Amount{}, err
		}
		if amount.IsZero() {
			continue
		}
		spread := NewDateRange(MaxDate(spawn.RecurrenceDate(), today.AddDays(1)), spawn.Date())
		total = total.Add(ProrateAmount(amount, spread, dateRange))
	}
	return total, nil
}
