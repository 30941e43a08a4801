package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

var (
	// ErrMalformedLine is returned for a line that is neither noise nor part
	// of the block grammar.
	ErrMalformedLine = errors.New("malformed line")

	// ErrUnexpectedEOF is returned when the log ends inside an event block.
	ErrUnexpectedEOF = errors.New("log ends inside an event block")
)

// maxLineSize bounds a single log line. Chat messages are the longest lines
// the decoder prints.
const maxLineSize = 1024 * 1024

// ParseError points at the offending line of the event log.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Diagnostic records a field name outside the typing tables.
type Diagnostic struct {
	Line  int
	Event string
	Field string
}

// Field is one depth-0 field of a block and the depth-1 fields printed
// under it.
type Field struct {
	Value  core.Value
	Nested map[string]core.Value
}

// RawEvent is one block of the log with typed, but not yet interpreted,
// fields.
type RawEvent struct {
	Type   string
	Line   int
	Fields map[string]*Field
}

type tokenizerState int

const (
	awaitingType tokenizerState = iota
	awaitingOpen
	inBlock
)

// Tokenizer reads blocks from the log one at a time. It is not
// restartable; once Next returns an error every later call returns it
// again.
type Tokenizer struct {
	parser  *Parser
	scanner *bufio.Scanner

	lineNo   int
	prevLine string
	state    tokenizerState
	current  *RawEvent

	// baseIndent is the indent of the first field line of the current
	// block, -1 until one is seen. parentKey is the depth-0 key that owns
	// depth-1 lines; it is reset by every depth-0 field.
	baseIndent int
	parentKey  string

	diagnostics []Diagnostic
	err         error
}

func newTokenizer(p *Parser, r io.Reader) *Tokenizer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Tokenizer{
		parser:     p,
		scanner:    scanner,
		baseIndent: -1,
	}
}

// Diagnostics returns the unknown fields seen so far.
func (t *Tokenizer) Diagnostics() []Diagnostic {
	return t.diagnostics
}

// Next returns the next complete block, or io.EOF once the log is
// exhausted.
func (t *Tokenizer) Next() (*RawEvent, error) {
	if t.err != nil {
		return nil, t.err
	}

	for t.scanner.Scan() {
		t.lineNo++
		line := strings.TrimRight(t.scanner.Text(), "\r")
		event, err := t.consume(line)
		t.prevLine = line
		if err != nil {
			t.err = err
			return nil, err
		}
		if event != nil {
			return event, nil
		}
	}

	if err := t.scanner.Err(); err != nil {
		t.err = fmt.Errorf("error reading event log: %w", err)
		return nil, t.err
	}
	if t.state != awaitingType {
		t.err = &ParseError{Line: t.lineNo, Text: t.prevLine, Err: ErrUnexpectedEOF}
		return nil, t.err
	}

	t.err = io.EOF
	return nil, io.EOF
}

// All yields raw blocks in log order. Iteration stops after the first
// error, which is yielded once.
func (t *Tokenizer) All() iter.Seq2[*RawEvent, error] {
	return func(yield func(*RawEvent, error) bool) {
		for {
			event, err := t.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

// Events yields typed events in log order.
func (t *Tokenizer) Events() iter.Seq2[core.Event, error] {
	return func(yield func(core.Event, error) bool) {
		for raw, err := range t.All() {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t.parser.Decode(raw), nil) {
				return
			}
		}
	}
}

func (t *Tokenizer) consume(line string) (*RawEvent, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}
	if t.isNoise(trimmed) {
		t.parser.logger.Debug("Skipping noise line", "line", t.lineNo, "text", trimmed)
		return nil, nil
	}

	switch t.state {
	case awaitingType:
		if trimmed == "{" || trimmed == "}" {
			return nil, t.malformed(line, "unexpected brace outside event block")
		}
		if _, _, _, ok := splitFieldLine(line); ok {
			t.parser.logger.Warn("Skipping field line outside event block", "line", t.lineNo, "text", trimmed)
			return nil, nil
		}
		t.current = &RawEvent{
			Type:   trimmed,
			Line:   t.lineNo,
			Fields: make(map[string]*Field),
		}
		t.state = awaitingOpen
		return nil, nil

	case awaitingOpen:
		if trimmed != "{" {
			return nil, t.malformed(line, fmt.Sprintf("expected '{' after event type %q", t.current.Type))
		}
		t.state = inBlock
		t.baseIndent = -1
		t.parentKey = ""
		return nil, nil

	default:
		if trimmed == "}" {
			event := t.current
			t.current = nil
			t.state = awaitingType
			return event, nil
		}
		return nil, t.field(line)
	}
}

func (t *Tokenizer) field(line string) error {
	indent, key, value, ok := splitFieldLine(line)
	if !ok {
		return t.malformed(line, "not a field line")
	}
	if t.baseIndent < 0 {
		t.baseIndent = indent
	}

	switch {
	case indent == t.baseIndent:
		typed, err := t.typeValue(key, value)
		if err != nil {
			return &ParseError{Line: t.lineNo, Text: line, Err: err}
		}
		t.current.Fields[key] = &Field{Value: typed}
		t.parentKey = key

	case indent > t.baseIndent:
		parent, ok := t.current.Fields[t.parentKey]
		if !ok {
			return t.malformed(line, "nested field without a parent field")
		}
		typed, err := t.typeValue(key, value)
		if err != nil {
			return &ParseError{Line: t.lineNo, Text: line, Err: err}
		}
		if parent.Nested == nil {
			parent.Nested = make(map[string]core.Value)
		}
		parent.Nested[key] = typed

	default:
		return t.malformed(line, "field indented less than the block")
	}
	return nil
}

func (t *Tokenizer) malformed(line, reason string) error {
	return &ParseError{
		Line: t.lineNo,
		Text: line,
		Err:  fmt.Errorf("%w: %s", ErrMalformedLine, reason),
	}
}

// isNoise reports lines the decoder interleaves with the event blocks.
func (t *Tokenizer) isNoise(trimmed string) bool {
	if strings.HasPrefix(trimmed, "Cannot") {
		return true
	}
	if t.state == awaitingType {
		if key, _, found := strings.Cut(trimmed, ":"); found && isActorKey(key) {
			return true
		}
	}
	if t.isStructural(trimmed) {
		return false
	}
	lower := strings.TrimRight(strings.ToLower(trimmed), ".")
	return strings.HasSuffix(lower, "disconnect") || strings.HasSuffix(lower, "disconnected")
}

// isStructural reports lines the disconnect rule must not swallow: an
// event type tag such as player_disconnect, or a field of the typing
// tables such as "reason: Disconnect".
func (t *Tokenizer) isStructural(trimmed string) bool {
	switch t.state {
	case awaitingType:
		return isTypeTag(trimmed)
	case inBlock:
		key, _, found := strings.Cut(trimmed, ":")
		_, known := fieldKinds[key]
		return found && known
	}
	return false
}

// isTypeTag matches the event names the decoder prints, e.g.
// player_disconnect.
func isTypeTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// splitFieldLine splits "<indent><key>: <value>". Keys never contain
// whitespace.
func splitFieldLine(line string) (indent int, key, value string, ok bool) {
	body := strings.TrimLeft(line, " \t")
	indent = len(line) - len(body)
	key, value, found := strings.Cut(body, ":")
	if !found || key == "" || strings.ContainsAny(key, " \t") {
		return 0, "", "", false
	}
	return indent, key, strings.TrimSpace(value), true
}
