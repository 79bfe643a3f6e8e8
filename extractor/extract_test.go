package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banktocsv/releve/extractor/attijari"
	"github.com/banktocsv/releve/extractor/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStatementText = `ATTIJARI BANK
RELEVE DE COMPTE
Date Libellé Date Valeur Débit Crédit
04 08 COMMISSION ENC CHQ 0146467 01 08 2025 0,893
04 08 VERSEMENT ESPECE 091936 05 08 2025 1 640,000
SOLDE 1 477,110
`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testDocument() Document {
	day := func(d int) time.Time { return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC) }
	return Document{
		Source: "test_statement",
		Result: common.ParseResult{
			Transactions: []common.Transaction{
				{OperationDate: day(4), ValueDate: day(1), Label: "COMMISSION", Debit: decimal.RequireFromString("0.893")},
				{OperationDate: day(4), ValueDate: day(5), Label: "VERSEMENT", Credit: decimal.RequireFromString("1640")},
			},
			FinalBalance: decimal.NewNullDecimal(decimal.RequireFromString("1477.11")),
		},
	}
}

func TestProcessText(t *testing.T) {
	doc := newTestExtractor(t).ProcessText(testStatementText, "aout")

	require.NoError(t, doc.Err)
	assert.Equal(t, "aout", doc.Source)
	assert.Equal(t, 2, doc.Result.Count())
	assert.True(t, doc.Result.HasFinalBalance())
}

func TestProcessReader_Text(t *testing.T) {
	doc := newTestExtractor(t).ProcessReader(strings.NewReader(testStatementText), "releve_aout.txt")

	require.NoError(t, doc.Err)
	assert.Equal(t, "releve_aout", doc.Source)
	assert.Equal(t, 2, doc.Result.Count())
}

func TestProcessReader_NotAPDF(t *testing.T) {
	doc := newTestExtractor(t).ProcessReader(strings.NewReader("not a pdf"), "broken.pdf")

	assert.ErrorIs(t, doc.Err, common.ErrExtractionFailed)
	assert.Equal(t, 0, doc.Result.Count())
}

func TestProcessReader_TooLarge(t *testing.T) {
	e, err := New(Options{Logger: zerolog.Nop(), MaxBytes: 16})
	require.NoError(t, err)

	doc := e.ProcessReader(strings.NewReader(testStatementText), "big.txt")
	assert.ErrorIs(t, doc.Err, ErrFileTooLarge)
}

func TestProcessFile_TooLarge(t *testing.T) {
	e, err := New(Options{Logger: zerolog.Nop(), MaxBytes: 16})
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "big.txt", testStatementText)
	doc := e.ProcessFile(path)
	assert.ErrorIs(t, doc.Err, ErrFileTooLarge)
	assert.Equal(t, "big", doc.Source)
}

func TestProcessFile_Missing(t *testing.T) {
	doc := newTestExtractor(t).ProcessFile(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.True(t, errors.Is(doc.Err, os.ErrNotExist))
}

func TestProcessPath_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", testStatementText)
	writeFile(t, dir, "b.pdf", "garbage")
	writeFile(t, dir, "c.TXT", "nothing useful here")
	writeFile(t, dir, "notes.md", testStatementText)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	docs, err := newTestExtractor(t).ProcessPath(context.Background(), dir, 4)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "a", docs[0].Source)
	assert.NoError(t, docs[0].Err)
	assert.Equal(t, 2, docs[0].Result.Count())

	assert.Equal(t, "b", docs[1].Source)
	assert.ErrorIs(t, docs[1].Err, common.ErrExtractionFailed)

	assert.Equal(t, "c", docs[2].Source)
	assert.NoError(t, docs[2].Err)
	assert.Equal(t, 0, docs[2].Result.Count())
}

func TestProcessPath_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.txt", testStatementText)

	docs, err := newTestExtractor(t).ProcessPath(context.Background(), path, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Result.Count())
}

func TestProcessPath_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", testStatementText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(t).ProcessPath(ctx, dir, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessPath_Missing(t *testing.T) {
	_, err := newTestExtractor(t).ProcessPath(context.Background(), filepath.Join(t.TempDir(), "missing"), 1)
	assert.Error(t, err)
}

func TestNewFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(attijari.DefaultConfigYAML)))
	v.Set("extraction.max_bytes", 32)

	e, err := NewFromViper(v, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int32(3), e.Precision())

	doc := e.ProcessReader(strings.NewReader(testStatementText), "x.txt")
	assert.ErrorIs(t, doc.Err, ErrFileTooLarge)
}

func TestNewFromViper_BadConfig(t *testing.T) {
	_, err := NewFromViper(viper.New(), zerolog.Nop())
	assert.Error(t, err)
}

func TestCreateFinalOutput_TransactionOnly(t *testing.T) {
	result := CreateFinalOutput(testDocument(), 3, true, false)

	transactions, ok := result.([]transactionOutput)
	require.True(t, ok, "expected []transactionOutput")
	require.Len(t, transactions, 2)

	assert.Equal(t, transactionOutput{
		OperationDate: "2025-08-04",
		ValueDate:     "2025-08-01",
		Label:         "COMMISSION",
		Debit:         "0.893",
		Credit:        "0.000",
	}, transactions[0])
	assert.Equal(t, "1640.000", transactions[1].Credit)
	assert.Equal(t, "0.000", transactions[1].Debit)
}

func TestCreateFinalOutput_BalanceOnly(t *testing.T) {
	result := CreateFinalOutput(testDocument(), 3, false, true)

	outputMap, ok := result.(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "test_statement", outputMap["source"])
	assert.Equal(t, "1477.110", outputMap["final_balance"])
	assert.Equal(t, 2, outputMap["total_transactions"])
	assert.Equal(t, "0.893", outputMap["total_debit"])
	assert.Equal(t, "1640.000", outputMap["total_credit"])
	_, exists := outputMap["transactions"]
	assert.False(t, exists, "expected no transactions in balance-only output")
}

func TestCreateFinalOutput_Full(t *testing.T) {
	result := CreateFinalOutput(testDocument(), 3, false, false)

	outputMap := result.(map[string]interface{})
	transactions, ok := outputMap["transactions"].([]transactionOutput)
	require.True(t, ok)
	assert.Len(t, transactions, 2)
	_, hasErr := outputMap["error"]
	assert.False(t, hasErr)
}

func TestCreateFinalOutput_NoBalance(t *testing.T) {
	doc := Document{Source: "empty", Result: common.ParseResult{Transactions: []common.Transaction{}}}
	outputMap := CreateFinalOutput(doc, 3, false, false).(map[string]interface{})

	assert.Nil(t, outputMap["final_balance"])
	assert.Equal(t, 0, outputMap["total_transactions"])
	assert.Equal(t, "0.000", outputMap["total_debit"])
	assert.Empty(t, outputMap["transactions"])
}

func TestCreateFinalOutput_Error(t *testing.T) {
	doc := Document{Source: "broken", Err: common.ErrExtractionFailed}
	outputMap := CreateFinalOutput(doc, 3, false, false).(map[string]interface{})

	assert.Equal(t, "text extraction failed", outputMap["error"])
}
