// Package pipeline runs one demo through the decoder, the tokenizer and
// the reconstructor, and hands the result to a storage backend.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/logging"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/matchtype"
	"github.com/ThePyrotechnic/openscoreboard/internal/parser"
	"github.com/ThePyrotechnic/openscoreboard/internal/storage"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Decoder produces the event log for a demo and returns its path.
// *decoder.Decoder implements it.
type Decoder interface {
	Run(ctx context.Context, demoPath string, skip bool) (string, error)
}

// Logs hands out loggers. *logging.SlogManager implements it.
type Logs interface {
	Logger() *slog.Logger
	WithContext(provider logging.ContextProvider) *slog.Logger
}

// Request describes one run.
type Request struct {
	DemoPath string
	DemoType string
	// SkipDecode reuses the event log of a previous run.
	SkipDecode bool
}

// Pipeline wires the stages of a run together.
type Pipeline struct {
	decoder Decoder
	store   storage.Backend
	logs    Logs

	// OTEL metrics
	events    metric.Int64Counter
	rounds    metric.Int64Counter
	unknown   metric.Int64Counter
	durations metric.Float64Histogram
}

// New creates a pipeline. Uses the global OTel meter for metrics (no-op
// if not configured).
func New(dec Decoder, store storage.Backend, logs Logs) (*Pipeline, error) {
	p := &Pipeline{
		decoder: dec,
		store:   store,
		logs:    logs,
	}

	m := meter()
	var err error

	p.events, err = m.Int64Counter(
		"pipeline.events.processed",
		metric.WithDescription("Events handed to the reconstructor"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	p.rounds, err = m.Int64Counter(
		"pipeline.rounds",
		metric.WithDescription("Rounds reconstructed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rounds counter: %w", err)
	}

	p.unknown, err = m.Int64Counter(
		"pipeline.fields.unknown",
		metric.WithDescription("Fields outside the typing tables"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unknown fields counter: %w", err)
	}

	p.durations, err = m.Float64Histogram(
		"pipeline.stage.duration",
		metric.WithDescription("Wall time per pipeline stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return p, nil
}

// Run processes one demo and stores the result. The returned record is
// valid even when the demo ended before the match concluded.
func (p *Pipeline) Run(ctx context.Context, req Request) (*match.Record, error) {
	log := p.logs.Logger()

	policy, err := matchtype.Get(req.DemoType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logPath, err := p.decoder.Run(ctx, req.DemoPath, req.SkipDecode)
	if err != nil {
		return nil, err
	}
	p.observe(ctx, "decode", start)

	meta := match.Meta{
		DemoPath:  req.DemoPath,
		DemoType:  policy.Name(),
		TickRate:  policy.TickRate(),
		StartedAt: startedAt(req.DemoPath, logPath),
	}

	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	var r *match.Reconstructor
	r = match.New(policy, p.logs.WithContext(func() []slog.Attr {
		if r == nil {
			return nil
		}
		return r.LogAttrs()
	}))

	tok := parser.New(log).Tokenize(f)

	start = time.Now()
	state, err := r.Run(ctx, p.counted(ctx, tok.Events()))
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct %s: %w", req.DemoPath, err)
	}
	p.observe(ctx, "reconstruct", start)

	if !r.Concluded() {
		log.Warn("Event log ended before the match concluded",
			"phase", state.Phase.String(),
			"rounds", len(state.Rounds))
	}
	p.rounds.Add(ctx, int64(len(state.Rounds)))

	rec := &match.Record{
		Meta:          meta,
		State:         state,
		UnknownFields: unknownFields(tok.Diagnostics()),
	}
	for key, n := range rec.UnknownFields {
		p.unknown.Add(ctx, int64(n), metric.WithAttributes(attribute.String("field", key)))
	}

	start = time.Now()
	if err := p.store.StoreMatch(ctx, rec); err != nil {
		return rec, fmt.Errorf("failed to store match: %w", err)
	}
	p.observe(ctx, "store", start)

	return rec, nil
}

// counted passes events through, counting them by type.
func (p *Pipeline) counted(ctx context.Context, events iter.Seq2[core.Event, error]) iter.Seq2[core.Event, error] {
	return func(yield func(core.Event, error) bool) {
		for event, err := range events {
			if err == nil {
				p.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", event.EventHeader().Type)))
			}
			if !yield(event, err) {
				return
			}
		}
	}
}

func (p *Pipeline) observe(ctx context.Context, stage string, start time.Time) {
	p.durations.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// unknownFields counts diagnostics by "event.field".
func unknownFields(diags []parser.Diagnostic) map[string]int {
	if len(diags) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, d := range diags {
		counts[d.Event+"."+d.Field]++
	}
	return counts
}

// startedAt dates the match by the demo file, falling back to the event
// log when the demo is not around (reused output).
func startedAt(demoPath, logPath string) time.Time {
	for _, path := range []string{demoPath, logPath} {
		if info, err := os.Stat(path); err == nil {
			return info.ModTime().UTC()
		}
	}
	return time.Now().UTC()
}
