// Package util provides identifier, numbering and time helpers for Vectra.
package util

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDSource produces unique entity identifiers.
type IDSource interface {
	NewID() string
}

// IDGenerator provides thread-safe UUIDv7 generation.
// UUIDv7 ids are time-ordered, which keeps SQLite primary key inserts local.
type IDGenerator struct {
	mu sync.Mutex
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID generates a new UUIDv7 identifier from this generator.
func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		// Only fails when the random source is broken.
		return uuid.NewString()
	}
	return id.String()
}

var generator = NewIDGenerator()

// NewID generates a new UUIDv7 identifier.
func NewID() string {
	return generator.NewID()
}

// ParseID validates and normalises a UUID string.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return id.String(), nil
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	return uuid.Validate(s) == nil
}

// SequenceIDs hands out predictable ids ("prefix-1", "prefix-2", ...).
// DO NOT use in production - tests and seed data only.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a sequence with the given prefix.
func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// InvoiceNumberGenerator issues invoice numbers.
// Format: FAT-{year}-{3-digit sequence}
// Example: FAT-2024-001
//
// Sequences are kept per year and never go backwards.
type InvoiceNumberGenerator struct {
	mu      sync.Mutex
	lastSeq map[int]int
}

// NewInvoiceNumberGenerator creates a new invoice number generator.
func NewInvoiceNumberGenerator() *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{lastSeq: make(map[int]int)}
}

// Observe records an existing invoice number so later numbers of the same
// year continue after it. Numbers in another format are ignored.
func (g *InvoiceNumberGenerator) Observe(number string) {
	year, seq, err := ParseInvoiceNumber(number)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq > g.lastSeq[year] {
		g.lastSeq[year] = seq
	}
}

// Next generates the next invoice number for the given year.
func (g *InvoiceNumberGenerator) Next(year int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeq[year]++
	return FormatInvoiceNumber(year, g.lastSeq[year])
}

// FormatInvoiceNumber renders an invoice number.
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("FAT-%d-%03d", year, seq)
}

// ParseInvoiceNumber extracts the year and sequence from an invoice number.
func ParseInvoiceNumber(number string) (year, seq int, err error) {
	if !strings.HasPrefix(number, "FAT-") {
		return 0, 0, fmt.Errorf("invalid invoice number format: %q", number)
	}
	if _, err = fmt.Sscanf(number, "FAT-%d-%d", &year, &seq); err != nil {
		return 0, 0, fmt.Errorf("invalid invoice number format: %w", err)
	}
	return year, seq, nil
}
