package ledger

import "sort"

// =============================================================================
// ACCOUNT
// =============================================================================

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountIncome    AccountType = "income"
	AccountExpense   AccountType = "expense"
)

// Account identifies a ledger account. Accounts are owned by the document
// and referenced (never owned) by transactions, schedules and budgets.
type Account struct {
	Name     string
	Currency string
	Type     AccountType
}

// IsDebitAccount reports whether the account increases with debits
// (assets and expenses).
func (a *Account) IsDebitAccount() bool {
	return a.Type == AccountAsset || a.Type == AccountExpense
}

func (a *Account) IsCreditAccount() bool {
	return !a.IsDebitAccount()
}

// NormalizeAmount flips the sign for credit-normal accounts so that the
// "natural" direction of the account reads as positive in displays.
func (a *Account) NormalizeAmount(amount Amount) Amount {
	if a.IsCreditAccount() {
		return amount.Neg()
	}
	return amount
}

// =============================================================================
// ACCOUNTS - Registry plus per-account entry lists
// =============================================================================

// Accounts is the account registry. It also owns the per-account EntryList
// caches that the oven's balance aggregation fills in.
type Accounts struct {
	byName  map[string]*Account
	entries map[string]*EntryList
	rate    RateFunc
}

func NewAccounts(rate RateFunc) *Accounts {
	return &Accounts{
		byName:  make(map[string]*Account),
		entries: make(map[string]*EntryList),
		rate:    rate,
	}
}

func (as *Accounts) Add(a *Account) error {
	if _, ok := as.byName[a.Name]; ok {
		return ErrAccountExists
	}
	as.byName[a.Name] = a
	as.entries[a.Name] = newEntryList(a, as.rate)
	return nil
}

func (as *Accounts) Remove(name string) {
	delete(as.byName, name)
	delete(as.entries, name)
}

func (as *Accounts) Find(name string) (*Account, bool) {
	a, ok := as.byName[name]
	return a, ok
}

// All returns the accounts sorted by name.
func (as *Accounts) All() []*Account {
	result := make([]*Account, 0, len(as.byName))
	for _, a := range as.byName {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// EntriesForAccount returns the account's entry list, creating it on first
// use for accounts registered before the aggregation pass.
func (as *Accounts) EntriesForAccount(a *Account) *EntryList {
	el, ok := as.entries[a.Name]
	if !ok {
		el = newEntryList(a, as.rate)
		as.entries[a.Name] = el
	}
	return el
}
