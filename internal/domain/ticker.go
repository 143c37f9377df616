package domain

import (
	"errors"
	"strings"
)

// TickerSymbol is a normalized (uppercase, trimmed) trading symbol.
// Two symbols that differ only in case compare equal because both are
// normalized at construction.
type TickerSymbol string

var ErrEmptyTicker = errors.New("ticker symbol cannot be empty")

func NewTickerSymbol(raw string) (TickerSymbol, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyTicker
	}
	return TickerSymbol(strings.ToUpper(s)), nil
}

func (t TickerSymbol) String() string { return string(t) }
