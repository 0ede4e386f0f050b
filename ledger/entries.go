package ledger

// =============================================================================
// ENTRIES - Per-account running balances
// =============================================================================

// Entry is one split of a cooked transaction projected onto its account:
// the split amount converted to the account currency plus running totals.
//
//	Balance            real transactions and schedule spawns
//	BalanceWithBudget  everything, budget spawns included
//	ReconciledBalance  reconciled splits only
type Entry struct {
	Transaction *Transaction
	Split       *Split
	Amount      Amount
	Balance     Amount
	BalanceWithBudget Amount
	ReconciledBalance Amount
}

func (e *Entry) Date() Date { return e.Transaction.Date }

// EntryList caches an account's cooked entries in ledger order. It is owned
// by the Accounts registry and rebuilt by the aggregation pass; readers
// must treat returned entries as snapshots valid until the next cook.
type EntryList struct {
	account *Account
	rate    RateFunc
	entries []*Entry
}

func newEntryList(account *Account, rate RateFunc) *EntryList {
	return &EntryList{account: account, rate: rate}
}

func (el *EntryList) Account() *Account { return el.account }
func (el *EntryList) Len() int          { return len(el.entries) }
func (el *EntryList) All() []*Entry     { return el.entries }

// Clear drops every entry dated on or after `from`. A zero `from` clears
// the whole list.
func (el *EntryList) Clear(from Date) {
	if from.IsZero() {
		el.entries = nil
		return
	}
	for i, e := range el.entries {
		if e.Date().AfterOrEqual(from) {
			el.entries = el.entries[:i]
			return
		}
	}
}

// add appends the entry for one split, converting to the account currency
// at the transaction's date.
func (el *EntryList) add(txn *Transaction, split *Split) error {
	amount, err := split.Amount.Convert(el.rate, txn.Date, el.account.Currency)
	if err != nil {
		return err
	}
	el.entries = append(el.entries, &Entry{Transaction: txn, Split: split, Amount: amount})
	return nil
}

// cook recomputes the running totals over the whole list.
func (el *EntryList) cook() {
	balance := Amount{Currency: el.account.Currency}
	withBudget := balance
	reconciled := balance
	for _, e := range el.entries {
		withBudget = withBudget.Add(e.Amount)
		if !e.Transaction.IsBudgetSpawn() {
			balance = balance.Add(e.Amount)
		}
		if e.Split.IsReconciled() {
			reconciled = reconciled.Add(e.Amount)
		}
		e.Balance = balance
		e.BalanceWithBudget = withBudget
		e.ReconciledBalance = reconciled
	}
}

// LastEntryAsOf returns the last entry dated on or before `date`, or nil.
func (el *EntryList) LastEntryAsOf(date Date) *Entry {
	var last *Entry
	for _, e := range el.entries {
		if e.Date().After(date) {
			break
		}
		last = e
	}
	return last
}

// BalanceAsOf returns the running balance at `date`, converted to
// `currency` (empty keeps the account currency). Budget spawns count only
// when `withBudget` is set.
func (el *EntryList) BalanceAsOf(date Date, currency string, withBudget bool) (Amount, error) {
	if currency == "" {
		currency = el.account.Currency
	}
	e := el.LastEntryAsOf(date)
	if e == nil {
		return Amount{Currency: currency}, nil
	}
	balance := e.Balance
	if withBudget {
		balance = e.BalanceWithBudget
	}
	return balance.Convert(el.rate, date, currency)
}

// NormalBalanceAsOf is BalanceAsOf sign-normalized for display.
func (el *EntryList) NormalBalanceAsOf(date Date, currency string, withBudget bool) (Amount, error) {
	balance, err := el.BalanceAsOf(date, currency, withBudget)
	if err != nil {
		return Amount{}, err
	}
	return el.account.NormalizeAmount(balance), nil
}

// CashFlow sums the entry amounts falling inside `dateRange`, budget
// spawns excluded.
func (el *EntryList) CashFlow(dateRange DateRange, currency string) (Amount, error) {
	if currency == "" {
		currency = el.account.Currency
	}
	total := Amount{Currency: currency}
	for _, e := range el.entries {
		if !dateRange.Contains(e.Date()) || e.Transaction.IsBudgetSpawn() {
			continue
		}
		converted, err := e.Amount.Convert(el.rate, e.Date(), currency)
		if err != nil {
			return Amount{}, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

func (el *EntryList) NormalCashFlow(dateRange DateRange, currency string) (Amount, error) {
	flow, err := el.CashFlow(dateRange, currency)
	if err != nil {
		return Amount{}, err
	}
	return el.account.NormalizeAmount(flow), nil
}

// =============================================================================
// BALANCE AGGREGATOR
// =============================================================================

// BalanceAggregator materializes per-account running balances from an
// ordered transaction list. The oven treats it as a black box.
type BalanceAggregator interface {
	Aggregate(accounts *Accounts, orderedTxns []*Transaction) error
}

// EntryAggregator is the default aggregator: one Entry per assigned split,
// running totals recomputed per account.
type EntryAggregator struct{}

func (EntryAggregator) Aggregate(accounts *Accounts, orderedTxns []*Transaction) error {
	touched := make(map[*EntryList]bool)
	for _, txn := range orderedTxns {
		for _, split := range txn.Splits {
			if split.Account == nil {
				continue
			}
			el := accounts.EntriesForAccount(split.Account)
			if err := el.add(txn, split); err != nil {
				return err
			}
			touched[el] = true
		}
	}
	for el := range touched {
		el.cook()
	}
	return nil
}
