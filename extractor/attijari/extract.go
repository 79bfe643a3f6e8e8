// Package attijari extracts transactions and the closing balance from the
// text of an Attijari bank (Tunisia) account statement.
package attijari

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/banktocsv/releve/extractor/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ScanState tracks where a scan is relative to the transaction table.
type ScanState int

const (
	SeekingHeader ScanState = iota
	InBlock
	Done
)

func (s ScanState) String() string {
	switch s {
	case SeekingHeader:
		return "seeking_header"
	case InBlock:
		return "in_block"
	case Done:
		return "done"
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

// Parser holds the compiled rules for one statement layout. It is not
// modified after New returns and may be shared between goroutines.
type Parser struct {
	classifier *classifier
	balance    *balanceExtractor
	rules      RuleTable
	precision  int32
	log        zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for skipped lines and unresolved
// classifications. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

// New compiles cfg into a Parser.
func New(cfg Config, opts ...Option) (*Parser, error) {
	cls, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}
	bal, err := newBalanceExtractor(cfg)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		classifier: cls,
		balance:    bal,
		rules:      NewRuleTable(cfg.CreditKeywords, cfg.DebitKeywords, cfg.DefaultSide),
		precision:  cfg.Precision,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Precision is the number of fraction digits amounts are printed with.
func (p *Parser) Precision() int32 {
	return p.precision
}

// Parse scans the statement text once, top to bottom. Lines before the
// table header are ignored and the closing balance line ends the scan.
// Running out of lines early is not an error: the result then holds
// whatever was collected and no balance.
func (p *Parser) Parse(text string) common.ParseResult {
	result := common.ParseResult{Transactions: []common.Transaction{}}
	state := SeekingHeader

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		if state == Done {
			break
		}
		line := strings.TrimSpace(normalizeSpaces(raw))
		if line == "" {
			continue
		}
		lineNo := i + 1

		switch state {
		case SeekingHeader:
			if p.classifier.IsHeaderLine(line) {
				p.log.Debug().Int("line", lineNo).Msg("transaction table header found")
				state = InBlock
			}

		case InBlock:
			if p.classifier.IsBalanceLine(line) {
				if p.classifier.IsOpeningBalance(line) {
					p.log.Debug().Int("line", lineNo).Msg("opening balance ignored")
					continue
				}
				if amount, ok := p.balance.Extract(line); ok {
					result.FinalBalance = decimal.NewNullDecimal(amount)
				} else {
					p.log.Warn().Int("line", lineNo).Str("text", line).Msg("closing balance amount not readable")
				}
				state = Done
				continue
			}

			if !p.classifier.IsTransactionLine(line) {
				continue
			}
			tx, err := p.transaction(line, lineNo)
			if err != nil {
				p.log.Warn().Int("line", lineNo).Str("text", line).Err(err).Msg("skipping transaction line")
				continue
			}
			result.Transactions = append(result.Transactions, tx)
		}
	}

	p.log.Debug().
		Str("state", state.String()).
		Int("transactions", result.Count()).
		Bool("final_balance", result.HasFinalBalance()).
		Msg("scan finished")

	return result
}

func (p *Parser) transaction(line string, lineNo int) (common.Transaction, error) {
	f, err := ParseTransactionLine(line)
	if err != nil {
		return common.Transaction{}, err
	}

	verdict := p.rules.Classify(f.Label)
	if !verdict.Resolved {
		p.log.Debug().
			Int("line", lineNo).
			Str("label", f.Label).
			Strs("matched", verdict.Matched).
			Str("side", string(verdict.Side)).
			Str("amount", common.FormatAmount(f.Amount, p.precision)).
			Msg("ambiguous label, using default side")
	}

	debit, credit := verdict.Side.Split(f.Amount)
	return common.Transaction{
		OperationDate: f.OperationDate,
		ValueDate:     f.ValueDate,
		Label:         f.Label,
		Debit:         debit,
		Credit:        credit,
	}, nil
}

// normalizeSpaces maps every Unicode space (no-break, narrow no-break, tab)
// to a plain ASCII space. PDF text groups thousands with U+00A0 or U+202F,
// which the RE2 \s class does not match.
func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

var defaultParser = sync.OnceValue(func() *Parser {
	p, err := New(DefaultConfig())
	if err != nil {
		panic("attijari: default parser: " + err.Error())
	}
	return p
})

// Extract parses text with the built-in configuration.
func Extract(text string) common.ParseResult {
	return defaultParser().Parse(text)
}
