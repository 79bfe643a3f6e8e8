package attijari

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/banktocsv/releve/extractor/common"
	"github.com/shopspring/decimal"
)

// Fields is a transaction line split into its positional parts, before
// the debit/credit decision.
type Fields struct {
	OperationDate time.Time
	ValueDate     time.Time
	Label         string
	Amount        decimal.Decimal
}

type token struct {
	text       string
	start, end int
}

var (
	errNoDecomposition = errors.New("no date/amount suffix found")
	errZeroAmount      = errors.New("zero amount")
)

// ParseTransactionLine decomposes "DD MM LABEL DD MM YYYY AMOUNT".
//
// The line is tokenized once. The operation day and month are the first two
// tokens; the value date and amount are anchored from the right, taking the
// rightmost DD MM YYYY that is followed only by amount digits. The label is
// everything in between, so digit groups inside it survive. A zero amount
// is rejected: every transaction moves money on exactly one side.
func ParseTransactionLine(line string) (Fields, error) {
	toks := tokenize(line)
	n := len(toks)
	if n < 7 || !isDigits(toks[0].text, 2) || !isDigits(toks[1].text, 2) || !isAmountTail(toks[n-1].text) {
		return Fields{}, fmt.Errorf("%w: %w", common.ErrUnparsableLine, errNoDecomposition)
	}

	// m is the first token of the digit-only run that ends just before the
	// last token. The amount may start anywhere in [m, n-1].
	m := n - 1
	for m > 0 && isDigits(toks[m-1].text, 0) {
		m--
	}

	k := -1
	for i := n - 1; i >= max(m, 6); i-- {
		if isDigits(toks[i-3].text, 2) && isDigits(toks[i-2].text, 2) && isDigits(toks[i-1].text, 4) {
			k = i
			break
		}
	}
	if k < 0 {
		return Fields{}, fmt.Errorf("%w: %w", common.ErrUnparsableLine, errNoDecomposition)
	}

	year := toks[k-1].text
	opDate, err := common.ComposeDate(year, toks[1].text, toks[0].text)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: operation date: %w", common.ErrUnparsableLine, err)
	}
	valDate, err := common.ComposeDate(year, toks[k-2].text, toks[k-3].text)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: value date: %w", common.ErrUnparsableLine, err)
	}

	amount, err := common.NormalizeAmount(line[toks[k].start:toks[n-1].end])
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %w", common.ErrUnparsableLine, err)
	}
	if amount.IsZero() {
		return Fields{}, fmt.Errorf("%w: %w", common.ErrUnparsableLine, errZeroAmount)
	}

	return Fields{
		OperationDate: opDate,
		ValueDate:     valDate,
		Label:         strings.TrimSpace(line[toks[1].end:toks[k-3].start]),
		Amount:        amount,
	}, nil
}

func tokenize(line string) []token {
	var toks []token
	start := -1
	for i, r := range line {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{text: line[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: line[start:], start: start, end: len(line)})
	}
	return toks
}

// isDigits reports whether s is all ASCII digits. A positive width also
// requires exactly that many.
func isDigits(s string, width int) bool {
	if s == "" || (width > 0 && len(s) != width) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isAmountTail accepts the last amount token: digits with at most one comma.
func isAmountTail(s string) bool {
	if !utf8.ValidString(s) || strings.Count(s, ",") > 1 {
		return false
	}
	return isDigits(strings.Replace(s, ",", "", 1), 0)
}
