package common

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode"

	dpdf "github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/unidoc/unipdf/v3/common/license"
	uniextractor "github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/multierr"
)

// DefaultMinTextQuality is the share of readable runes below which an
// extraction is treated as garbage (custom font encodings, scans).
const DefaultMinTextQuality = 0.6

// TextOptions tunes ExtractText.
type TextOptions struct {
	// UnidocLicenseKey enables the unipdf fallback. Empty skips it.
	UnidocLicenseKey string
	MinQuality       float64
	Logger           zerolog.Logger
}

type textSource struct {
	name    string
	extract func(data []byte, opts TextOptions) ([]string, error)
}

var textSources = []textSource{
	{name: "dslipak/pdf", extract: extractRowsWithDslipak},
	{name: "ledongthuc/pdf", extract: extractWithLedongthuc},
	{name: "unipdf", extract: extractWithUnidoc},
}

// ExtractText turns PDF bytes into newline separated text in reading order,
// trying each PDF library in turn. It fails with ErrExtractionFailed only when
// none of them yields readable text.
func ExtractText(data []byte, opts TextOptions) (string, error) {
	if opts.MinQuality <= 0 {
		opts.MinQuality = DefaultMinTextQuality
	}

	var errs error
	for _, src := range textSources {
		rows, err := runSource(src, data, opts)
		if err != nil {
			opts.Logger.Debug().Str("source", src.name).Err(err).Msg("text source failed")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.name, err))
			continue
		}

		quality := textQuality(rows)
		if len(rows) == 0 || quality < opts.MinQuality {
			opts.Logger.Debug().Str("source", src.name).Int("rows", len(rows)).Float64("quality", quality).Msg("text source unreadable")
			errs = multierr.Append(errs, fmt.Errorf("%s: no readable text (%d rows, quality %.2f)", src.name, len(rows), quality))
			continue
		}

		opts.Logger.Debug().Str("source", src.name).Int("rows", len(rows)).Msg("text extracted")
		return strings.Join(rows, "\n"), nil
	}

	return "", fmt.Errorf("%w: %v", ErrExtractionFailed, errs)
}

func runSource(src textSource, data []byte, opts TextOptions) (rows []string, err error) {
	// The pure-Go readers panic on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return src.extract(data, opts)
}

// extractRowsWithDslipak rebuilds each visual row by joining its text runs
// with single spaces.
func extractRowsWithDslipak(data []byte, _ TextOptions) ([]string, error) {
	r, err := dpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	extracted := make([]string, 0, numPages*100)

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}

		for _, row := range rows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				extracted = append(extracted, builder.String())
			}
		}
	}

	return extracted, nil
}

func extractWithLedongthuc(data []byte, _ TextOptions) ([]string, error) {
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var extracted []string
	for no := 1; no <= r.NumPage(); no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		extracted = append(extracted, splitNonEmpty(text)...)
	}
	return extracted, nil
}

var (
	unidocOnce sync.Once
	unidocErr  error
)

func extractWithUnidoc(data []byte, opts TextOptions) ([]string, error) {
	if opts.UnidocLicenseKey == "" {
		return nil, fmt.Errorf("no license key configured")
	}
	unidocOnce.Do(func() {
		unidocErr = license.SetMeteredKey(opts.UnidocLicenseKey)
	})
	if unidocErr != nil {
		return nil, fmt.Errorf("license: %w", unidocErr)
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	var extracted []string
	for no := 1; no <= numPages; no++ {
		page, err := reader.GetPage(no)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		ex, err := uniextractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		extracted = append(extracted, splitNonEmpty(text)...)
	}
	return extracted, nil
}

func splitNonEmpty(text string) []string {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// textQuality is the share of runes that are letters, digits, spaces or
// punctuation. Broken font maps produce mostly control and private-use runes.
func textQuality(rows []string) float64 {
	total, readable := 0, 0
	for _, row := range rows {
		for _, r := range row {
			total++
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
