package ledger

// Shared fixtures for the package tests.

func fixedClock(d Date) Clock {
	return func() Date { return d }
}

// testTransfer builds a balanced two-split transaction with no account
// assignment, enough for recurrence-level tests.
func testTransfer(desc string, date Date, amount float64) *Transaction {
	return &Transaction{
		Date:        date,
		Description: desc,
		Splits: []*Split{
			{Amount: NewAmount(amount, "USD")},
			{Amount: NewAmount(-amount, "USD")},
		},
	}
}

// txnTouching builds a posted transaction moving `amount` onto `account`
// from an unassigned split.
func txnTouching(account *Account, date Date, amount float64) *Transaction {
	return &Transaction{
		Date:        date,
		Description: "txn " + date.String(),
		Splits: []*Split{
			{Account: account, Amount: NewAmount(amount, account.Currency)},
			{Amount: NewAmount(-amount, account.Currency)},
		},
	}
}
