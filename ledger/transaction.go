package ledger

import "sort"

// =============================================================================
// SPLIT
// =============================================================================

// Split is one leg of a transaction. A nil Account means the split is
// unassigned. Amounts are expressed in the transaction's currency context;
// a transaction's splits must sum to zero once expressed in one currency.
type Split struct {
	Account            *Account
	Amount             Amount
	Memo               string
	ReconciliationDate *Date
}

func (s *Split) IsReconciled() bool { return s.ReconciliationDate != nil }

func (s *Split) copy() *Split {
	dup := *s
	if s.ReconciliationDate != nil {
		rd := *s.ReconciliationDate
		dup.ReconciliationDate = &rd
	}
	return &dup
}

// =============================================================================
// TRANSACTION
// =============================================================================

type SpawnKind int

const (
	SpawnSchedule SpawnKind = iota + 1
	SpawnBudget
)

// SpawnInfo marks a transaction as spawned and points back at its generator
// by opaque ID. RecurrenceDate is the occurrence (period start) the spawn
// was generated for, which can differ from the transaction's effective date.
type SpawnInfo struct {
	SourceID       string
	Kind           SpawnKind
	RecurrenceDate Date
}

// Transaction is a dated set of splits. Real transactions are persisted;
// spawned ones (Spawn != nil) are regenerated on every cook and never
// stored. Position breaks ties between transactions sharing a date.
type Transaction struct {
	ID          string
	Date        Date
	Description string
	Payee       string
	CheckNumber string
	Splits      []*Split
	Position    int

	Spawn *SpawnInfo
}

func (t *Transaction) IsSpawn() bool       { return t.Spawn != nil }
func (t *Transaction) IsBudgetSpawn() bool { return t.Spawn != nil && t.Spawn.Kind == SpawnBudget }

// Affects reports whether any split references the account.
func (t *Transaction) Affects(a *Account) bool {
	for _, s := range t.Splits {
		if s.Account == a {
			return true
		}
	}
	return false
}

func (t *Transaction) AffectedAccounts() []*Account {
	var result []*Account
	seen := make(map[*Account]bool)
	for _, s := range t.Splits {
		if s.Account != nil && !seen[s.Account] {
			seen[s.Account] = true
			result = append(result, s.Account)
		}
	}
	return result
}

// AmountForAccount sums the transaction's splits assigned to `account`,
// expressed in `currency` at the transaction's date.
func (t *Transaction) AmountForAccount(account *Account, currency string, rate RateFunc) (Amount, error) {
	total := Amount{Currency: currency}
	for _, s := range t.Splits {
		if s.Account != account {
			continue
		}
		converted, err := s.Amount.Convert(rate, t.Date, currency)
		if err != nil {
			return Amount{}, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

// Balanced checks the balanced-entry invariant: splits sum to zero once
// expressed in a common currency. Splits in a foreign currency are converted
// at the transaction's date.
func (t *Transaction) Balanced(rate RateFunc) (bool, error) {
	if len(t.Splits) == 0 {
		return true, nil
	}
	currency := t.Splits[0].Amount.Currency
	total := Amount{Currency: currency}
	for _, s := range t.Splits {
		converted, err := s.Amount.Convert(rate, t.Date, currency)
		if err != nil {
			return false, err
		}
		total = total.Add(converted)
	}
	return total.IsZero(), nil
}

// Copy returns a deep copy, splits included.
func (t *Transaction) Copy() *Transaction {
	dup := *t
	dup.Splits = make([]*Split, len(t.Splits))
	for i, s := range t.Splits {
		dup.Splits[i] = s.copy()
	}
	if t.Spawn != nil {
		info := *t.Spawn
		dup.Spawn = &info
	}
	return &dup
}

// assertBalanced guards the spawn factory: a recurrence or budget template
// that does not balance must never get this far.
func assertBalanced(t *Transaction, rate RateFunc) {
	ok, err := t.Balanced(rate)
	if err == nil && !ok {
		panic("spawn template does not balance: " + t.Description)
	}
}

// =============================================================================
// TRANSACTION LIST - Posted (real) transactions of a document
// =============================================================================

type TransactionList struct {
	txns []*Transaction
}

func NewTransactionList() *TransactionList {
	return &TransactionList{}
}

func (tl *TransactionList) Add(t *Transaction) {
	tl.txns = append(tl.txns, t)
}

func (tl *TransactionList) Remove(t *Transaction) {
	for i, existing := range tl.txns {
		if existing == t {
			tl.txns = append(tl.txns[:i], tl.txns[i+1:]...)
			return
		}
	}
}

func (tl *TransactionList) Len() int { return len(tl.txns) }

// All returns the backing slice; callers must not mutate it.
func (tl *TransactionList) All() []*Transaction { return tl.txns }

// Sort orders by date, then position.
func (tl *TransactionList) Sort() {
	sort.SliceStable(tl.txns, func(i, j int) bool {
		if !tl.txns[i].Date.Equal(tl.txns[j].Date) {
			return tl.txns[i].Date.Before(tl.txns[j].Date)
		}
		return tl.txns[i].Position < tl.txns[j].Position
	})
}

// Last returns the transaction with the highest sort order, or nil when the
// list is empty. Assumes Sort was called.
func (tl *TransactionList) Last() *Transaction {
	if len(tl.txns) == 0 {
		return nil
	}
	return tl.txns[len(tl.txns)-1]
}

// NextPosition returns a position value sorting after every existing
// transaction.
func (tl *TransactionList) NextPosition() int {
	max := 0
	for _, t := range tl.txns {
		if t.Position >= max {
			max = t.Position + 1
		}
	}
	return max
}
