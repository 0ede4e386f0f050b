// Package document owns the collections a ledger works on: accounts,
// posted transactions, schedules, and budgets. It coordinates edits with
// the oven's cook passes. The engine itself is not safe against concurrent
// mutation, so every entry point here takes the document's single writer
// lock; callers get serialized cook-after-edit semantics for free.
package document

import (
	"errors"
	"sync"

	"github.com/hearth/forecast-engine/ledger"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrBudgetNotFound      = errors.New("budget not found")
)

type Document struct {
	mu sync.Mutex

	accounts     *ledger.Accounts
	transactions *ledger.TransactionList
	schedules    *ledger.ScheduleList
	budgets      *ledger.BudgetList
	oven         *ledger.Oven

	rate  ledger.RateFunc
	clock ledger.Clock
}

// New creates an empty document. `rate` may be nil for single-currency
// documents; `clock` defaults to the real calendar.
func New(rate ledger.RateFunc, clock ledger.Clock) *Document {
	if clock == nil {
		clock = ledger.Today
	}
	accounts := ledger.NewAccounts(rate)
	transactions := ledger.NewTransactionList()
	schedules := ledger.NewScheduleList()
	budgets := ledger.NewBudgetList(rate, clock)
	return &Document{
		accounts:     accounts,
		transactions: transactions,
		schedules:    schedules,
		budgets:      budgets,
		oven:         ledger.NewOven(accounts, transactions, schedules, budgets),
		rate:         rate,
		clock:        clock,
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (d *Document) AddAccount(name, currency string, typ ledger.AccountType) (*ledger.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account := &ledger.Account{Name: name, Currency: currency, Type: typ}
	if err := d.accounts.Add(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (d *Document) FindAccount(name string) (*ledger.Account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accounts.Find(name)
}

func (d *Document) Accounts() []*ledger.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accounts.All()
}

// EntriesFor returns a snapshot of the account's cooked entries with
// running balances. Valid until the next cook.
func (d *Document) EntriesFor(name string) ([]*ledger.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts.Find(name)
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	entries := d.accounts.EntriesForAccount(account).All()
	snapshot := make([]*ledger.Entry, len(entries))
	copy(snapshot, entries)
	return snapshot, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// AddTransaction posts a real transaction and re-cooks from its date.
// Unbalanced transactions are rejected; the transient unbalanced state
// allowed during editing must be resolved before posting.
func (d *Document) AddTransaction(txn *ledger.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkBalanced(txn); err != nil {
		return err
	}
	txn.Position = d.transactions.NextPosition()
	d.transactions.Add(txn)
	return d.cookFrom(txn.Date)
}

func (d *Document) RemoveTransaction(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, txn := range d.transactions.All() {
		if txn.ID == id {
			d.transactions.Remove(txn)
			return d.cookFrom(txn.Date)
		}
	}
	return ErrTransactionNotFound
}

// Transactions returns the cooked result: posted transactions merged with
// schedule and budget spawns, in date/position order. The returned slice
// is a snapshot valid until the next cook.
func (d *Document) Transactions() []*ledger.Transaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	cooked := d.oven.CookedTransactions()
	snapshot := make([]*ledger.Transaction, len(cooked))
	copy(snapshot, cooked)
	return snapshot
}

// =============================================================================
// SCHEDULES
// =============================================================================

// AddSchedule registers a recurrence. Its template must balance; spawn
// materialization treats an unbalanced template as a programming error.
func (d *Document) AddSchedule(rec *ledger.Recurrence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkBalanced(rec.Ref()); err != nil {
		return err
	}
	d.schedules.Add(rec)
	return d.cookFrom(rec.StartDate())
}

func (d *Document) RemoveSchedule(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.schedules.Find(id)
	if !ok {
		return ErrScheduleNotFound
	}
	d.schedules.Remove(id)
	return d.cookFrom(rec.StartDate())
}

func (d *Document) Schedules() []*ledger.Recurrence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schedules.All()
}

func (d *Document) ScheduleAddException(id string, recurrenceDate ledger.Date, txn *ledger.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.schedules.Find(id)
	if !ok {
		return ErrScheduleNotFound
	}
	if txn != nil {
		if err := d.checkBalanced(txn); err != nil {
			return err
		}
	}
	rec.AddException(recurrenceDate, txn)
	return d.cookFrom(recurrenceDate)
}

// ScheduleAddGlobalChange replaces the template for the given occurrence
// and every one after it.
func (d *Document) ScheduleAddGlobalChange(id string, recurrenceDate ledger.Date, txn *ledger.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.schedules.Find(id)
	if !ok {
		return ErrScheduleNotFound
	}
	if err := d.checkBalanced(txn); err != nil {
		return err
	}
	rec.AddGlobalChange(recurrenceDate, txn)
	return d.cookFrom(recurrenceDate)
}

func (d *Document) ScheduleDeleteDate(id string, recurrenceDate ledger.Date) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.schedules.Find(id)
	if !ok {
		return ErrScheduleNotFound
	}
	rec.DeleteDate(recurrenceDate)
	return d.cookFrom(recurrenceDate)
}

func (d *Document) ScheduleSetStopDate(id string, stop ledger.Date) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.schedules.Find(id)
	if !ok {
		return ErrScheduleNotFound
	}
	rec.SetStopDate(stop)
	return d.cookFrom(stop)
}

// =============================================================================
// BUDGETS
// =============================================================================

func (d *Document) AddBudget(b *ledger.Budget) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.budgets.Add(b)
	return d.cookFrom(d.budgets.StartDate)
}

func (d *Document) RemoveBudget(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.budgets.Find(id); !ok {
		return ErrBudgetNotFound
	}
	d.budgets.Remove(id)
	return d.cookFrom(d.budgets.StartDate)
}

func (d *Document) Budgets() []*ledger.Budget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.budgets.All()
}

func (d *Document) BudgetAddException(id string, recurrenceDate ledger.Date, exc ledger.BudgetException) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.budgets.Find(id)
	if !ok {
		return ErrBudgetNotFound
	}
	b.AddException(recurrenceDate, exc)
	return d.cookFrom(d.budgets.StartDate)
}

// BudgetPeriods returns every computed period of a budget, past and
// zero-amount ones included, for review displays.
func (d *Document) BudgetPeriods(id string) ([]*ledger.BudgetSpawn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.budgets.Find(id)
	if !ok {
		return nil, ErrBudgetNotFound
	}
	spawns := b.AllSpawns()
	snapshot := make([]*ledger.BudgetSpawn, len(spawns))
	copy(snapshot, spawns)
	return snapshot, nil
}

// BudgetedAmount sums the prorated budget allocation for an account over a
// date range. Zero unless the range is strictly in the future.
func (d *Document) BudgetedAmount(accountName string, dateRange ledger.DateRange, currency string, normalized bool) (ledger.Amount, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts.Find(accountName)
	if !ok {
		return ledger.Amount{}, ledger.ErrAccountNotFound
	}
	if normalized {
		return d.budgets.NormalAmountForAccount(account, dateRange, currency)
	}
	return d.budgets.AmountForAccount(account, dateRange, currency)
}

// SetBudgetPeriod sets the universal budgeting period shared by all
// budgets in the document.
func (d *Document) SetBudgetPeriod(start ledger.Date, repeat ledger.RepeatType, every int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.budgets.StartDate = start
	d.budgets.RepeatType = repeat
	d.budgets.RepeatEvery = every
	return d.cookFrom(start)
}

// =============================================================================
// COOKING
// =============================================================================

func (d *Document) Cook(from, until *ledger.Date) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.oven.Cook(from, until)
}

func (d *Document) ContinueCooking(until ledger.Date) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.oven.ContinueCooking(until)
}

func (d *Document) CookedUntil() ledger.Date {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.oven.CookedUntil()
}

func (d *Document) checkBalanced(txn *ledger.Transaction) error {
	balanced, err := txn.Balanced(d.rate)
	if err != nil {
		return err
	}
	if !balanced {
		return ledger.ErrUnbalancedTransaction
	}
	return nil
}

// cookFrom re-cooks from an edit's date, keeping the current horizon when
// it already extends past the edit. Callers hold the lock.
func (d *Document) cookFrom(from ledger.Date) error {
	var until *ledger.Date
	if u := d.oven.CookedUntil(); !u.IsZero() && u.After(from) {
		until = &u
	}
	return d.oven.Cook(&from, until)
}
