package document

import "github.com/hearth/forecast-engine/ledger"

// Snapshot is the persistable state of a document: the posted collections
// only, never cooked results. Spawns and entries are recomputed on load.
type Snapshot struct {
	Accounts     []*ledger.Account
	Transactions []*ledger.Transaction
	Schedules    []*ledger.Recurrence
	Budgets      []*ledger.Budget

	BudgetStart  ledger.Date
	BudgetRepeat ledger.RepeatType
	BudgetEvery  int
}

// Snapshot captures the document's posted state as a deep copy taken
// under the document lock, so a save can read it while later requests
// keep editing and cooking. Split account pointers still reference the
// live accounts; account fields are immutable once added.
func (d *Document) Snapshot() *Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	posted := d.transactions.All()
	txns := make([]*ledger.Transaction, len(posted))
	for i, txn := range posted {
		txns[i] = txn.Copy()
	}
	schedules := make([]*ledger.Recurrence, 0, d.schedules.Len())
	for _, rec := range d.schedules.All() {
		schedules = append(schedules, rec.Copy())
	}
	budgets := make([]*ledger.Budget, 0, d.budgets.Len())
	for _, b := range d.budgets.All() {
		budgets = append(budgets, b.Copy())
	}

	return &Snapshot{
		Accounts:     d.accounts.All(),
		Transactions: txns,
		Schedules:    schedules,
		Budgets:      budgets,
		BudgetStart:  d.budgets.StartDate,
		BudgetRepeat: d.budgets.RepeatType,
		BudgetEvery:  d.budgets.RepeatEvery,
	}
}

// FromSnapshot rebuilds a document from persisted state and cooks it.
func FromSnapshot(snap *Snapshot, rate ledger.RateFunc, clock ledger.Clock) (*Document, error) {
	d := New(rate, clock)

	for _, account := range snap.Accounts {
		if err := d.accounts.Add(account); err != nil {
			return nil, err
		}
	}
	for _, txn := range snap.Transactions {
		d.transactions.Add(txn)
	}
	for _, rec := range snap.Schedules {
		d.schedules.Add(rec)
	}
	for _, b := range snap.Budgets {
		d.budgets.Add(b)
	}
	if !snap.BudgetStart.IsZero() {
		d.budgets.StartDate = snap.BudgetStart
	}
	if snap.BudgetRepeat != "" {
		d.budgets.RepeatType = snap.BudgetRepeat
	}
	if snap.BudgetEvery > 0 {
		d.budgets.RepeatEvery = snap.BudgetEvery
	}

	if err := d.oven.Cook(nil, nil); err != nil {
		return nil, err
	}
	return d, nil
}
