package attijari

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigYAML holds the patterns and keyword sets for the Attijari
// layout. The CLI loads it first and merges any user config file on top.
const DefaultConfigYAML = `
statement:
  ATTIJARI:
    patterns:
      header:
        - date.*libelle.*valeur.*debit.*credit
        - date.*valeur.*debit.*credit
      transaction_line: ^\d{2}\s+\d{2}\s+.+\s+\d{2}\s+\d{2}\s+\d{4}\s+[\d\s,]+$
      closing_balance: ^SOLDE\s+[\d\s,]+$
      opening_balance: ^SOLDE\s+AU\s+\d{2}/\d{2}/\d{4}
      balance_value: ^SOLDE(?:\s+AU\s+\d{2}/\d{2}/\d{4})?\s+([\d\s,]+)$
      balance_fallback: (\d+\s+\d{3},\d{3})
    keywords:
      exclusion:
        - SOLDE
        - TOTAUX
        - REPORT
        - DONT TVA
        - ECHEANCE
      credit:
        - VERSEMENT
        - ENCAISSEMENT
        - VIR RECU
        - VIREMENT RECU
        - REMISE
        - DEPOT
        - CREDIT
        - RECEPTION
      debit:
        - COMMISSION
        - FRAIS
        - COTISATION
        - PRELEVEMENT
        - RETRAIT
        - GAB
        - ACHAT
        - PAIEMENT
        - VIR EMIS
        - VIREMENT EMIS
        - "STE "
        - SOCIETE
        - HOTEL
        - RESTAURANT
        - SUPERMARCHE
    default_side: debit
    precision: 3
`

const prefix = "statement.ATTIJARI."

// Config is the typed form of the statement.ATTIJARI section.
type Config struct {
	HeaderPatterns    []string
	TransactionLine   string
	ClosingBalance    string
	OpeningBalance    string
	BalanceValue      string
	BalanceFallback   string
	ExclusionKeywords []string
	CreditKeywords    []string
	DebitKeywords     []string
	DefaultSide       Side
	// Precision is the number of fraction digits amounts are rendered with.
	Precision int32
}

// LoadConfig reads the statement.ATTIJARI section from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		HeaderPatterns:    v.GetStringSlice(prefix + "patterns.header"),
		TransactionLine:   v.GetString(prefix + "patterns.transaction_line"),
		ClosingBalance:    v.GetString(prefix + "patterns.closing_balance"),
		OpeningBalance:    v.GetString(prefix + "patterns.opening_balance"),
		BalanceValue:      v.GetString(prefix + "patterns.balance_value"),
		BalanceFallback:   v.GetString(prefix + "patterns.balance_fallback"),
		ExclusionKeywords: v.GetStringSlice(prefix + "keywords.exclusion"),
		CreditKeywords:    v.GetStringSlice(prefix + "keywords.credit"),
		DebitKeywords:     v.GetStringSlice(prefix + "keywords.debit"),
		Precision:         v.GetInt32(prefix + "precision"),
	}

	side, err := ParseSide(v.GetString(prefix + "default_side"))
	if err != nil {
		return Config{}, fmt.Errorf("default_side: %w", err)
	}
	cfg.DefaultSide = side

	missing := []string{}
	if len(cfg.HeaderPatterns) == 0 {
		missing = append(missing, "patterns.header")
	}
	for key, value := range map[string]string{
		"patterns.transaction_line": cfg.TransactionLine,
		"patterns.closing_balance":  cfg.ClosingBalance,
		"patterns.opening_balance":  cfg.OpeningBalance,
		"patterns.balance_value":    cfg.BalanceValue,
		"patterns.balance_fallback": cfg.BalanceFallback,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing %s%s", prefix, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(DefaultConfigYAML)); err != nil {
		panic("attijari: embedded config: " + err.Error())
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		panic("attijari: embedded config: " + err.Error())
	}
	return cfg
}
