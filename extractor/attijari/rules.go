package attijari

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the column an amount lands in.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// ParseSide accepts "debit" or "credit" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Split places amount on this side and zero on the other.
func (s Side) Split(amount decimal.Decimal) (debit, credit decimal.Decimal) {
	if s == Credit {
		return decimal.Zero, amount
	}
	return amount, decimal.Zero
}

// Rule votes for a side when its keyword appears in an upper-cased label.
type Rule struct {
	Keyword string
	Side    Side
}

// Verdict is the outcome of classifying one label.
type Verdict struct {
	Side Side
	// Resolved is false when the label matched both sides or neither and the
	// table default was used.
	Resolved bool
	Matched  []string
}

// RuleTable decides debit or credit from label text. Rules are evaluated in
// order; only the set of sides that matched matters for the outcome.
type RuleTable struct {
	Rules   []Rule
	Default Side
}

// NewRuleTable builds a table with the credit keywords first.
func NewRuleTable(credit, debit []string, def Side) RuleTable {
	rules := make([]Rule, 0, len(credit)+len(debit))
	for _, kw := range credit {
		rules = append(rules, Rule{Keyword: strings.ToUpper(kw), Side: Credit})
	}
	for _, kw := range debit {
		rules = append(rules, Rule{Keyword: strings.ToUpper(kw), Side: Debit})
	}
	return RuleTable{Rules: rules, Default: def}
}

// Classify applies the table to a label. A label with only credit keywords
// is a credit, only debit keywords a debit; anything else falls back to
// the default, which for this bank is debit.
func (t RuleTable) Classify(label string) Verdict {
	upper := strings.ToUpper(label)

	var sawCredit, sawDebit bool
	var matched []string
	for _, rule := range t.Rules {
		if rule.Keyword == "" || !strings.Contains(upper, rule.Keyword) {
			continue
		}
		matched = append(matched, rule.Keyword)
		switch rule.Side {
		case Credit:
			sawCredit = true
		case Debit:
			sawDebit = true
		}
	}

	switch {
	case sawCredit && !sawDebit:
		return Verdict{Side: Credit, Resolved: true, Matched: matched}
	case sawDebit && !sawCredit:
		return Verdict{Side: Debit, Resolved: true, Matched: matched}
	}
	return Verdict{Side: t.Default, Resolved: false, Matched: matched}
}
