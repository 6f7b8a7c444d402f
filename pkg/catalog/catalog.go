// Package catalog classifies scanned barcodes. A barcode either matches a
// filter part in the knowledge base exactly, or is assigned a generic
// category from its digit count and leading digit.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// MinDigits is the shortest barcode, in digits, that is accepted.
const MinDigits = 8

// ErrInvalidBarcode is returned when a normalized barcode has fewer than MinDigits digits.
var ErrInvalidBarcode = errors.New("invalid barcode")

// Kind tells which branch of the classifier produced a Classification.
type Kind int

const (
	KindKnown Kind = iota
	KindHeuristic
)

func (k Kind) String() string {
	switch k {
	case KindKnown:
		return "Known"
	case KindHeuristic:
		return "Heuristic"
	default:
		return "Unknown"
	}
}

// Variant is one part matching a barcode. Several variants share a barcode
// when a part went through hardware revisions.
type Variant struct {
	Label      string // e.g. "버전 1"; empty for single-variant records
	PartName   string
	PartNumber string
	ImageURLs  []string
	Note       string
}

// BarcodeRecord is a knowledge base entry. Records are shared and must not be modified.
type BarcodeRecord struct {
	Code             string
	ApplicableModels []string
	Variants         []Variant
	// ImageURLs are shown once after all variants.
	ImageURLs []string
}

// Images returns every image URL of the record in display order.
func (r *BarcodeRecord) Images() []string {
	var urls []string
	for _, v := range r.Variants {
		urls = append(urls, v.ImageURLs...)
	}
	return append(urls, r.ImageURLs...)
}

// Notes returns the non-empty variant notes.
func (r *BarcodeRecord) Notes() []string {
	var notes []string
	for _, v := range r.Variants {
		if v.Note != "" {
			notes = append(notes, v.Note)
		}
	}
	return notes
}

// Classification is the result of classifying a barcode.
type Classification struct {
	Barcode string // normalized
	Kind    Kind

	// Set when Kind is KindKnown.
	Record *BarcodeRecord

	// Set when Kind is KindHeuristic.
	Category Category
	Guidance Guidance
}

// Catalog is an immutable barcode knowledge base.
type Catalog struct {
	records map[string]*BarcodeRecord
}

// New builds a catalog from records. Duplicate codes are rejected.
func New(records []BarcodeRecord) (*Catalog, error) {
	c := &Catalog{records: make(map[string]*BarcodeRecord, len(records))}
	for i := range records {
		rec := records[i]
		if _, exists := c.records[rec.Code]; exists {
			return nil, xerrors.Errorf("duplicate barcode %s in catalog", rec.Code)
		}
		c.records[rec.Code] = &rec
	}
	return c, nil
}

// Default is the catalog of known filter parts.
var Default = mustNew(knownParts)

func mustNew(records []BarcodeRecord) *Catalog {
	c, err := New(records)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize strips every character that is not an ASCII digit. It fails with
// ErrInvalidBarcode when fewer than MinDigits digits remain.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < MinDigits {
		return "", xerrors.Errorf("%q has %d digits, need at least %d: %w", raw, len(digits), MinDigits, ErrInvalidBarcode)
	}
	return digits, nil
}

// Lookup returns the record for an exact, already normalized code.
func (c *Catalog) Lookup(code string) (*BarcodeRecord, bool) {
	rec, ok := c.records[code]
	return rec, ok
}

// Codes returns all known codes in ascending order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.records))
	for code := range c.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Classify normalizes raw and classifies it. The result depends on nothing but raw.
func (c *Catalog) Classify(raw string) (*Classification, error) {
	code, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	if rec, ok := c.Lookup(code); ok {
		return &Classification{Barcode: code, Kind: KindKnown, Record: rec}, nil
	}

	cat := Categorize(code)
	return &Classification{
		Barcode:  code,
		Kind:     KindHeuristic,
		Category: cat,
		Guidance: guidanceFor(cat, len(code)),
	}, nil
}

// Classify classifies raw against the Default catalog.
func Classify(raw string) (*Classification, error) {
	return Default.Classify(raw)
}
