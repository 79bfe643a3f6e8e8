package attijari

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// classifier answers the line predicates. Built once per Parser.
type classifier struct {
	headers    []*regexp.Regexp
	exclusions []string
	txLine     *regexp.Regexp
	closing    *regexp.Regexp
	opening    *regexp.Regexp
}

func newClassifier(cfg Config) (*classifier, error) {
	c := &classifier{}

	for _, p := range cfg.HeaderPatterns {
		re, err := regexp.Compile(foldAccents(strings.ToLower(p)))
		if err != nil {
			return nil, fmt.Errorf("header pattern %q: %w", p, err)
		}
		c.headers = append(c.headers, re)
	}
	for _, kw := range cfg.ExclusionKeywords {
		if kw = strings.ToUpper(kw); kw != "" {
			c.exclusions = append(c.exclusions, kw)
		}
	}

	var err error
	if c.txLine, err = regexp.Compile(cfg.TransactionLine); err != nil {
		return nil, fmt.Errorf("transaction_line: %w", err)
	}
	if c.closing, err = regexp.Compile(cfg.ClosingBalance); err != nil {
		return nil, fmt.Errorf("closing_balance: %w", err)
	}
	if c.opening, err = regexp.Compile(cfg.OpeningBalance); err != nil {
		return nil, fmt.Errorf("opening_balance: %w", err)
	}
	return c, nil
}

// IsHeaderLine reports whether line is the column header of the
// transaction table. Case and accents are ignored.
func (c *classifier) IsHeaderLine(line string) bool {
	folded := foldAccents(strings.ToLower(line))
	for _, re := range c.headers {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// IsTransactionLine reports whether line has the shape of a transaction row.
// Summary rows (balances, totals, carried-forward lines) never qualify even
// when they happen to have that shape.
func (c *classifier) IsTransactionLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range c.exclusions {
		if strings.Contains(upper, kw) {
			return false
		}
	}
	return c.txLine.MatchString(strings.TrimSpace(line))
}

// IsBalanceLine matches both the closing and the opening balance forms.
func (c *classifier) IsBalanceLine(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	return c.closing.MatchString(upper) || c.opening.MatchString(upper)
}

// IsOpeningBalance matches "SOLDE AU dd/mm/yyyy ...".
func (c *classifier) IsOpeningBalance(line string) bool {
	return c.opening.MatchString(strings.ToUpper(strings.TrimSpace(line)))
}

// foldAccents strips combining marks after NFD decomposition, so "débit"
// becomes "debit".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
