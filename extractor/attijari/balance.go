package attijari

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/banktocsv/releve/extractor/common"
	"github.com/shopspring/decimal"
)

type balanceExtractor struct {
	value    *regexp.Regexp
	fallback *regexp.Regexp
}

func newBalanceExtractor(cfg Config) (*balanceExtractor, error) {
	value, err := regexp.Compile(cfg.BalanceValue)
	if err != nil {
		return nil, fmt.Errorf("balance_value: %w", err)
	}
	if value.NumSubexp() < 1 {
		return nil, fmt.Errorf("balance_value: pattern needs one capture group")
	}
	fallback, err := regexp.Compile(cfg.BalanceFallback)
	if err != nil {
		return nil, fmt.Errorf("balance_fallback: %w", err)
	}
	return &balanceExtractor{value: value, fallback: fallback}, nil
}

// Extract returns the amount printed on a balance line. The second result
// is false when no amount could be read.
func (b *balanceExtractor) Extract(line string) (decimal.Decimal, bool) {
	if m := b.value.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(line))); m != nil {
		if amount, err := common.NormalizeAmount(m[1]); err == nil {
			return amount, true
		}
	}

	// Layout drift: take the first grouped amount anywhere on the line.
	m := b.fallback.FindStringSubmatch(line)
	if m == nil {
		return decimal.Decimal{}, false
	}
	token := m[0]
	if len(m) > 1 {
		token = m[1]
	}
	amount, err := common.NormalizeAmount(token)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
