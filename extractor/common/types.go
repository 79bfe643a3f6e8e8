package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one recognized statement row. At most one of Debit and
// Credit is non-zero.
type Transaction struct {
	OperationDate time.Time       `json:"operation_date"`
	ValueDate     time.Time       `json:"value_date"`
	Label         string          `json:"label"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// Amount returns the magnitude of whichever side is set.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Credit.IsZero() {
		return t.Credit
	}
	return t.Debit
}

// IsCredit reports whether the transaction was classified as incoming funds.
func (t Transaction) IsCredit() bool {
	return !t.Credit.IsZero()
}

// ParseResult is what one scan over one document's text produces.
// Transactions are kept in the order they were printed.
type ParseResult struct {
	Transactions []Transaction      `json:"transactions"`
	FinalBalance decimal.NullDecimal `json:"final_balance"`
}

// Count is the number of extracted transactions.
func (r ParseResult) Count() int {
	return len(r.Transactions)
}

// HasFinalBalance reports whether a closing balance line was found.
func (r ParseResult) HasFinalBalance() bool {
	return r.FinalBalance.Valid
}

// Totals sums both sides over all transactions.
func (r ParseResult) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, tx := range r.Transactions {
		debit = debit.Add(tx.Debit)
		credit = credit.Add(tx.Credit)
	}
	return debit, credit
}
