package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banktocsv/releve/extractor/attijari"
	"github.com/banktocsv/releve/extractor/common"
	"github.com/banktocsv/releve/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBytes caps the size of a single input file.
const DefaultMaxBytes int64 = 10 << 20

// ErrFileTooLarge is returned for inputs above the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// Document is the outcome of processing one input. Err is set when the
// input could not be read or turned into text; a document that parsed but
// held no transactions has a nil Err.
type Document struct {
	Source string
	Result common.ParseResult
	Err    error
}

// Options configures an Extractor.
type Options struct {
	Parser   *attijari.Parser
	Text     common.TextOptions
	MaxBytes int64
	Logger   zerolog.Logger
}

// Extractor turns files and readers into parsed documents.
type Extractor struct {
	parser   *attijari.Parser
	text     common.TextOptions
	maxBytes int64
	log      zerolog.Logger
}

// New builds an Extractor. A nil Parser uses the built-in configuration.
// The same logger is handed to the PDF text sources.
func New(opts Options) (*Extractor, error) {
	parser := opts.Parser
	if parser == nil {
		var err error
		parser, err = attijari.New(attijari.DefaultConfig(), attijari.WithLogger(opts.Logger))
		if err != nil {
			return nil, err
		}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	opts.Text.Logger = opts.Logger
	return &Extractor{
		parser:   parser,
		text:     opts.Text,
		maxBytes: opts.MaxBytes,
		log:      opts.Logger,
	}, nil
}

// NewFromViper reads the statement and extraction settings from v.
func NewFromViper(v *viper.Viper, log zerolog.Logger) (*Extractor, error) {
	cfg, err := attijari.LoadConfig(v)
	if err != nil {
		return nil, fmt.Errorf("loading statement config: %w", err)
	}
	parser, err := attijari.New(cfg, attijari.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("compiling statement config: %w", err)
	}
	return New(Options{
		Parser: parser,
		Text: common.TextOptions{
			UnidocLicenseKey: v.GetString("extraction.unidoc_license_key"),
			MinQuality:       v.GetFloat64("extraction.min_text_quality"),
			Logger:           log,
		},
		MaxBytes: v.GetInt64("extraction.max_bytes"),
		Logger:   log,
	})
}

// Precision is the number of fraction digits used when rendering amounts.
func (e *Extractor) Precision() int32 {
	return e.parser.Precision()
}

// ProcessText parses text that has already been extracted from a PDF.
func (e *Extractor) ProcessText(text, source string) Document {
	return Document{
		Source: source,
		Result: e.parser.Parse(text),
	}
}

// ProcessReader handles an uploaded or piped file. Files ending in .txt are
// taken as already extracted text.
func (e *Extractor) ProcessReader(r io.Reader, filename string) Document {
	source := sourceName(filename)

	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return Document{Source: source, Err: fmt.Errorf("reading %s: %w", filename, err)}
	}
	if int64(len(data)) > e.maxBytes {
		return Document{Source: source, Err: fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filename, e.maxBytes)}
	}

	return e.process(data, filename)
}

// ProcessFile reads and parses one file from disk.
func (e *Extractor) ProcessFile(path string) Document {
	data, err := e.ReadFile(path)
	if err != nil {
		return Document{Source: sourceName(path), Err: err}
	}
	return e.process(data, path)
}

// ReadFile reads path, refusing files above the size limit.
func (e *Extractor) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > e.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), e.maxBytes)
	}
	return os.ReadFile(path)
}

// ExtractText returns the raw text of a PDF, or the file content for .txt.
func (e *Extractor) ExtractText(data []byte, filename string) (string, error) {
	if isText(filename) {
		return string(data), nil
	}
	return common.ExtractText(data, e.text)
}

func (e *Extractor) process(data []byte, filename string) Document {
	source := sourceName(filename)
	log := logger.WithFields(e.log, map[string]interface{}{"file": filename})
	log.Info().Msg("scanning")

	text, err := e.ExtractText(data, filename)
	if err != nil {
		log.Error().Err(err).Msg("text extraction failed")
		return Document{Source: source, Err: err}
	}

	doc := e.ProcessText(text, source)
	if doc.Result.Count() == 0 {
		log.Warn().Msg("no transactions found")
	}
	return doc
}

// ProcessPath processes a single file, or every .pdf and .txt file directly
// inside a directory using up to workers goroutines. Results keep directory
// order. Per-file failures are reported on each Document; the returned error
// is only set when the path itself cannot be read or ctx is cancelled.
func (e *Extractor) ProcessPath(ctx context.Context, path string, workers int) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []Document{e.ProcessFile(path)}, nil
	}

	log := logger.FromContext(ctx)
	log.Info().Str("dir", path).Msg("scanning directory")

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !isSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}

	if workers < 1 {
		workers = 1
	}
	docs := make([]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = e.ProcessFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug().Int("files", len(files)).Msg("directory done")
	return docs, nil
}

func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isText(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".txt")
}

func isSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || ext == ".txt"
}

// transactionOutput is the JSON shape of one transaction. Amounts are fixed
// precision strings so they print exactly as on the statement.
type transactionOutput struct {
	OperationDate string `json:"operation_date"`
	ValueDate     string `json:"value_date"`
	Label         string `json:"label"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
}

// CreateFinalOutput shapes a document for JSON output. transactionsOnly
// returns just the transaction list; balanceOnly drops it from the summary.
func CreateFinalOutput(doc Document, precision int32, transactionsOnly, balanceOnly bool) interface{} {
	transactions := make([]transactionOutput, 0, doc.Result.Count())
	for _, tx := range doc.Result.Transactions {
		transactions = append(transactions, transactionOutput{
			OperationDate: tx.OperationDate.Format("2006-01-02"),
			ValueDate:     tx.ValueDate.Format("2006-01-02"),
			Label:         tx.Label,
			Debit:         tx.Debit.StringFixed(precision),
			Credit:        tx.Credit.StringFixed(precision),
		})
	}

	if transactionsOnly {
		return transactions
	}

	totalDebit, totalCredit := doc.Result.Totals()
	output := map[string]interface{}{
		"source":             doc.Source,
		"total_transactions": doc.Result.Count(),
		"total_debit":        totalDebit.StringFixed(precision),
		"total_credit":       totalCredit.StringFixed(precision),
		"final_balance":      nullableAmount(doc.Result.FinalBalance, precision),
	}
	if doc.Err != nil {
		output["error"] = doc.Err.Error()
	}
	if !balanceOnly {
		output["transactions"] = transactions
	}
	return output
}

func nullableAmount(d decimal.NullDecimal, precision int32) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.StringFixed(precision)
}
