package ledger

import "github.com/shopspring/decimal"

// ProrateAmount spreads `amount` over `spreadOver` and returns the part
// falling inside `wanted`: amount * (overlap days / spread days). Empty or
// non-intersecting ranges yield zero, never an error.
func ProrateAmount(amount Amount, spreadOver, wanted DateRange) Amount {
	if spreadOver.IsEmpty() {
		return amount.Zero()
	}
	overlap := spreadOver.Intersect(wanted)
	if overlap.IsEmpty() {
		return amount.Zero()
	}
	rate := decimal.NewFromInt(int64(overlap.Days())).Div(decimal.NewFromInt(int64(spreadOver.Days())))
	return amount.Mul(rate)
}

// =============================================================================
// BUDGET LIST - The document's budget collection
// =============================================================================

// BudgetList coordinates all budgets of a document. It carries the
// universal budgeting period (one calendar grid shared by every budget
// regardless of each budget's stored rule) and resolves overlap between
// budgets on the same account through a per-account consumed-transaction
// arena.
type BudgetList struct {
	budgets []*Budget

	// Universal budgeting period, pushed onto every budget before spawning.
	StartDate   Date
	RepeatType  RepeatType
	RepeatEvery int

	rate  RateFunc
	clock Clock
}

func NewBudgetList(rate RateFunc, clock Clock) *BudgetList {
	if clock == nil {
		clock = Today
	}
	return &BudgetList{
		StartDate:   clock(),
		RepeatType:  RepeatMonthly,
		RepeatEvery: 1,
		rate:        rate,
		clock:       clock,
	}
}

// Add registers a budget. Registration order is the precedence order for
// same-account consumption: the first registered budget covering a period
// eats its transactions first. Callers needing a different precedence must
// pre-sort before registering.
func (bl *BudgetList) Add(b *Budget) { bl.budgets = append(bl.budgets, b) }

func (bl *BudgetList) Remove(id string) {
	for i, b := range bl.budgets {
		if b.id == id {
			bl.budgets = append(bl.budgets[:i], bl.budgets[i+1:]...)
			return
		}
	}
}

func (bl *BudgetList) Find(id string) (*Budget, bool) {
	for _, b := range bl.budgets {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

func (bl *BudgetList) All() []*Budget { return bl.budgets }
func (bl *BudgetList) Len() int       { return len(bl.budgets) }

// GetSpawns computes every budget's periods up to `until` against the
// consumable transaction pool and returns the externally-visible spawn
// transactions: zero-amount periods (busted, exactly balanced, or past)
// produce no forecasted transaction. Per-budget period detail stays
// retrievable through Budget.AllSpawns.
func (bl *BudgetList) GetSpawns(until Date, txns []*Transaction) ([]*Transaction, error) {
	if len(bl.budgets) == 0 {
		return nil, nil
	}
	for _, b := range bl.budgets {
		b.setSchedule(bl.StartDate, bl.RepeatType, bl.RepeatEvery)
	}
	today := bl.clock()

	// Budgets on different accounts never interact; same-account budgets
	// share one consumed set.
	arena := make(map[string]*ConsumedSet)
	var result []*Transaction
	for _, b := range bl.budgets {
		consumed, ok := arena[b.account.Name]
		if !ok {
			consumed = NewConsumedSet()
			arena[b.account.Name] = consumed
		}
		spawns, err := b.Spawns(until, txns, consumed, today, bl.rate)
		if err != nil {
			return nil, err
		}
		for _, spawn := range spawns {
			amount, err := spawn.Txn.AmountForAccount(b.account, b.amount.Currency, bl.rate)
			if err != nil {
				return nil, err
			}
			if !amount.IsZero() {
				result = append(result, spawn.Txn)
			}
		}
	}
	return result, nil
}

// AmountForAccount sums the prorated budgeted amount for `account` over
// `dateRange`. Budgeting only projects forward: a range that is not
// strictly in the future yields zero. An empty currency defaults to the
// account's.
func (bl *BudgetList) AmountForAccount(account *Account, dateRange DateRange, currency string) (Amount, error) {
	if currency == "" {
		currency = account.Currency
	}
	today := bl.clock()
	total := Amount{Currency: currency}
	if !dateRange.Future(today) {
		return total, nil
	}
	for _, b := range bl.budgets {
		if b.account != account || b.amount.IsZero() {
			continue
		}
		amount, err := b.AmountForDateRange(dateRange, currency, today, bl.rate)
		if err != nil {
			return Amount{}, err
		}
		total = total.Add(amount)
	}
	return total, nil
}

// NormalAmountForAccount is AmountForAccount sign-normalized for display.
func (bl *BudgetList) NormalAmountForAccount(account *Account, dateRange DateRange, currency string) (Amount, error) {
	amount, err := bl.AmountForAccount(account, dateRange, currency)
	if err != nil {
		return Amount{}, err
	}
	return account.NormalizeAmount(amount), nil
}
