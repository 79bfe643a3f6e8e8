package common

import "errors"

var (
	// ErrExtractionFailed means the PDF could not be turned into text at all.
	// It is distinct from a document that parsed but held no transactions.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnparsableLine marks a line shaped like a transaction whose fields
	// could not be decoded. The scan skips such lines.
	ErrUnparsableLine = errors.New("unparsable transaction line")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)
