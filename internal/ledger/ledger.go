// Package ledger maintains per-account posting histories with running
// balances and derives the trial balance. Accounts are created lazily
// in first-posting order; balances follow the debit-positive
// convention, so a negative balance is a credit-side balance.
package ledger

import (
	"sync"

	"bank-statement-ledger/internal/models"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/shopspring/decimal"
)

// Account is one ledger account: its postings in order plus the
// aggregate totals.
type Account struct {
	Name           string           `json:"name"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Postings       []models.Posting `json:"postings"`
	TotalDebit     decimal.Decimal  `json:"total_debit"`
	TotalCredit    decimal.Decimal  `json:"total_credit"`
	Balance        decimal.Decimal  `json:"balance"`
}

// Side returns which side the account's closing balance falls on.
func (a *Account) Side() models.BalanceSide {
	if a.Balance.IsNegative() {
		return models.BalanceSideCredit
	}
	return models.BalanceSideDebit
}

// Ledger accumulates journal entries into accounts.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*Account
	order    []string
	posted   int
	logger   logger.Logger
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]*Account),
		logger:   logger.GetGlobalLogger().WithComponent("ledger"),
	}
}

// SetOpeningBalance sets an account's opening balance, creating the
// account if needed. Positive is a debit balance. Calling this after
// postings exist returns an error: running balances are append-only.
func (l *Ledger) SetOpeningBalance(name string, balance decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := l.account(name)
	if len(account.Postings) > 0 {
		return apperrors.AccountingError(apperrors.CodeUnknownAccount, name, nil).
			WithSuggestion("set opening balances before posting entries")
	}

	account.OpeningBalance = balance
	account.Balance = balance
	return nil
}

// account returns the named account, creating it in first-seen order.
// Callers must hold l.mu.
func (l *Ledger) account(name string) *Account {
	if account, ok := l.accounts[name]; ok {
		return account
	}
	account := &Account{Name: name}
	l.accounts[name] = account
	l.order = append(l.order, name)
	return account
}

// Post records one balanced journal entry: a debit posting on the
// debit account and a credit posting on the credit account, each with
// the running balance after the movement.
func (l *Ledger) Post(entry *models.JournalEntry) error {
	if !entry.IsBalanced() {
		return apperrors.AccountingError(apperrors.CodeUnbalancedEntry, entry.DebitAccount, nil).
			WithContext("voucher_id", entry.VoucherID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	debitAccount := l.account(entry.DebitAccount)
	debitAccount.TotalDebit = debitAccount.TotalDebit.Add(entry.DebitAmount)
	debitAccount.Balance = debitAccount.Balance.Add(entry.DebitAmount)
	debitAccount.Postings = append(debitAccount.Postings, models.Posting{
		Date:        entry.Date,
		Particulars: "To " + entry.CreditAccount,
		Debit:       entry.DebitAmount,
		Balance:     debitAccount.Balance,
		Narration:   entry.Narration,
	})

	creditAccount := l.account(entry.CreditAccount)
	creditAccount.TotalCredit = creditAccount.TotalCredit.Add(entry.CreditAmount)
	creditAccount.Balance = creditAccount.Balance.Sub(entry.CreditAmount)
	creditAccount.Postings = append(creditAccount.Postings, models.Posting{
		Date:        entry.Date,
		Particulars: "By " + entry.DebitAccount,
		Credit:      entry.CreditAmount,
		Balance:     creditAccount.Balance,
		Narration:   entry.Narration,
	})

	l.posted++
	return nil
}

// PostAll posts a batch in order, stopping at the first failure.
func (l *Ledger) PostAll(entries []*models.JournalEntry) error {
	for _, entry := range entries {
		if err := l.Post(entry); err != nil {
			return err
		}
	}
	l.logger.WithFields(logger.Fields{
		"entries":  len(entries),
		"accounts": len(l.order),
	}).Info("Posted journal entries to ledger")
	return nil
}

// Account returns a copy of the named account.
func (l *Ledger) Account(name string) (*Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[name]
	if !ok {
		return nil, false
	}
	return copyAccount(account), true
}

// Accounts returns copies of all accounts in first-posting order.
func (l *Ledger) Accounts() []*Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := make([]*Account, 0, len(l.order))
	for _, name := range l.order {
		accounts = append(accounts, copyAccount(l.accounts[name]))
	}
	return accounts
}

func copyAccount(a *Account) *Account {
	c := *a
	c.Postings = append([]models.Posting{}, a.Postings...)
	return &c
}

// TrialBalance snapshots every account's totals. Closing balances go
// to the debit or credit column by sign, and the statement balances
// when the two column totals agree within the balance epsilon.
func (l *Ledger) TrialBalance() *models.TrialBalance {
	l.mu.Lock()
	defer l.mu.Unlock()

	tb := &models.TrialBalance{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, name := range l.order {
		account := l.accounts[name]
		row := models.TrialBalanceRow{
			Account:        name,
			TotalDebit:     account.TotalDebit,
			TotalCredit:    account.TotalCredit,
			ClosingBalance: account.Balance.Abs(),
			Side:           account.Side(),
		}
		if row.Side == models.BalanceSideDebit {
			tb.TotalDebit = tb.TotalDebit.Add(row.ClosingBalance)
		} else {
			tb.TotalCredit = tb.TotalCredit.Add(row.ClosingBalance)
		}
		tb.Rows = append(tb.Rows, row)
	}

	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(models.BalanceEpsilon)
	return tb
}

// EntryCount returns how many entries have been posted.
func (l *Ledger) EntryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.posted
}
