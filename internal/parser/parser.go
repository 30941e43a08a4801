package parser

import (
	"io"
	"log/slog"
)

// Parser turns decoder output into events.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// New creates a new parser with only a logger dependency
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Tokenize starts a lazy, single-pass read of the event log in r.
func (p *Parser) Tokenize(r io.Reader) *Tokenizer {
	return newTokenizer(p, r)
}
