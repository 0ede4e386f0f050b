package ledger

import "sort"

// =============================================================================
// OVEN - Merges real and spawned transactions, triggers balance aggregation
// =============================================================================

// Oven computes raw data from transactions, schedules and budgets. Cooking
// does two things: it spawns schedule and budget transactions and merges
// them with the posted ones into the ordered cooked list, and it hands that
// list to the balance aggregator to fill each account's entries with
// running totals.
//
// The oven is not safe against concurrent mutation of the collections it
// reads; callers serialize cook passes against edits (the document layer
// holds a single writer lock). Returned slices are snapshots valid until
// the next cook.
type Oven struct {
	Accounts     *Accounts
	Transactions *TransactionList
	Schedules    *ScheduleList
	Budgets      *BudgetList

	// Aggregator defaults to EntryAggregator.
	Aggregator BalanceAggregator

	cookedUntil Date
	cooked      []*Transaction
}

func NewOven(accounts *Accounts, transactions *TransactionList, schedules *ScheduleList, budgets *BudgetList) *Oven {
	return &Oven{
		Accounts:     accounts,
		Transactions: transactions,
		Schedules:    schedules,
		Budgets:      budgets,
		Aggregator:   EntryAggregator{},
	}
}

// CookedTransactions returns the cooked result: posted transactions mixed
// with schedule and budget spawns, in date/position order.
func (o *Oven) CookedTransactions() []*Transaction { return o.cooked }

// CookedUntil returns the current cook horizon.
func (o *Oven) CookedUntil() Date { return o.cookedUntil }

// ContinueCooking cooks from where the last pass stopped up to
// `until`. A horizon at or below the current one is a no-op.
func (o *Oven) ContinueCooking(until Date) error {
	if until.After(o.cookedUntil) {
		from := o.cookedUntil
		return o.Cook(&from, &until)
	}
	return nil
}

// Cook (re)computes the cooked transaction list and account entries from
// `from` to `until`. A nil `from` recomputes everything. A nil `until`
// defaults to the highest posted transaction date; recurrence needs an
// explicit stop or it would spawn forever.
func (o *Oven) Cook(from, until *Date) error {
	var fromDate Date
	if from != nil {
		fromDate = *from
		// A reconciled split anchors the cook boundary: if a cooked split
		// was reconciled on or after the requested date, widen back to its
		// transaction's date so a finalized balance is never recomputed
		// from a later point than it was reconciled at. Walk backwards to
		// catch chained overlaps.
		for i := len(o.cooked) - 1; i >= 0; i-- {
			txn := o.cooked[i]
			for _, split := range txn.Splits {
				rdate := split.ReconciliationDate
				if rdate != nil && rdate.AfterOrEqual(fromDate) {
					fromDate = MinDate(fromDate, txn.Date)
				}
			}
		}
	}

	o.Transactions.Sort()
	var untilDate Date
	switch {
	case until != nil:
		untilDate = *until
	case o.Transactions.Len() > 0:
		untilDate = o.Transactions.Last().Date
	default:
		untilDate = fromDate
	}

	// Discard cached results from the boundary on.
	for _, account := range o.Accounts.All() {
		o.Accounts.EntriesForAccount(account).Clear(fromDate)
	}
	if fromDate.IsZero() {
		o.cooked = nil
	} else {
		kept := o.cooked[:0:0]
		for _, txn := range o.cooked {
			if txn.Date.Before(fromDate) {
				kept = append(kept, txn)
			}
		}
		o.cooked = kept
	}

	// Schedules resolve first; budget spawns then consume from the combined
	// pool of posted transactions and schedule spawns.
	var spawns []*Transaction
	if o.Schedules != nil {
		for _, recurrence := range o.Schedules.All() {
			spawns = append(spawns, recurrence.Spawns(untilDate)...)
		}
	}
	if o.Budgets != nil && o.Budgets.Len() > 0 {
		pool := make([]*Transaction, 0, o.Transactions.Len()+len(spawns))
		for _, txn := range o.Transactions.All() {
			if txn.Date.AfterOrEqual(o.Budgets.StartDate) {
				pool = append(pool, txn)
			}
		}
		pool = append(pool, spawns...)
		budgetSpawns, err := o.Budgets.GetSpawns(untilDate, pool)
		if err != nil {
			return err
		}
		spawns = append(spawns, budgetSpawns...)
	}

	// Deterministic same-date ordering: spawn positions continue past the
	// highest posted position so the two never overlap, even after posted
	// transactions were removed.
	position := o.Transactions.NextPosition()
	for _, spawn := range spawns {
		spawn.Position = position
		position++
	}

	// Transactions past the horizon still participate: a future-dated
	// posted entry can affect earlier budget math.
	tocook := make([]*Transaction, 0, o.Transactions.Len()+len(spawns))
	for _, txn := range o.Transactions.All() {
		if txn.Date.AfterOrEqual(fromDate) {
			tocook = append(tocook, txn)
		}
	}
	for _, spawn := range spawns {
		if spawn.Date.AfterOrEqual(fromDate) {
			tocook = append(tocook, spawn)
		}
	}
	sort.SliceStable(tocook, func(i, j int) bool {
		if !tocook[i].Date.Equal(tocook[j].Date) {
			return tocook[i].Date.Before(tocook[j].Date)
		}
		return tocook[i].Position < tocook[j].Position
	})

	aggregator := o.Aggregator
	if aggregator == nil {
		aggregator = EntryAggregator{}
	}
	if err := aggregator.Aggregate(o.Accounts, tocook); err != nil {
		return err
	}

	o.cooked = append(o.cooked, tocook...)
	o.cookedUntil = untilDate
	return nil
}
