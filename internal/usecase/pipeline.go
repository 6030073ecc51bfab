package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"LeadScanner/internal/config"
	"LeadScanner/internal/domain"
	"LeadScanner/internal/extract"
	"LeadScanner/internal/ledger"
	"LeadScanner/internal/ports"
	"LeadScanner/internal/score"
)

// bodyBudget caps how much of the message body is persisted per record.
const bodyBudget = 500

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.MessageSource
	Sink     ports.LeadSink
	Archive  ports.LeadArchive
	Notifier ports.Notifier
	Scoring  config.ScoringConfig
	Filters  config.FilterConfig
	Logger   *slog.Logger
}

// Pipeline runs the per-message workflow: subject filter, dedup check,
// normalize, extract, score, record, notify.
type Pipeline struct {
	source   ports.MessageSource
	sink     ports.LeadSink
	archive  ports.LeadArchive
	notifier ports.Notifier
	scoring  config.ScoringConfig
	filters  []string
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:   deps.Source,
		sink:     deps.Sink,
		archive:  deps.Archive,
		notifier: deps.Notifier,
		scoring:  deps.Scoring,
		filters:  deps.Filters.SubjectContains,
		logger:   deps.Logger,
	}
}

// ProcessBatch fetches messages delivered since the given instant and runs
// each unseen one through the pipeline. The seen set is mutated in place; ids
// are added only after a successful log append so a failed append is retried
// on the next run. Returns the number of newly recorded leads.
func (p *Pipeline) ProcessBatch(ctx context.Context, since time.Time, seen *ledger.Set) (int, error) {
	if p.source == nil || p.sink == nil {
		return 0, fmt.Errorf("pipeline missing source or sink")
	}

	messages, err := p.source.FetchSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}

	recorded := 0
	for _, msg := range messages {
		if !p.subjectAccepted(msg.Subject) {
			continue
		}
		if seen.Contains(msg.ID) {
			continue
		}

		record, result := p.evaluate(msg)

		if err := p.sink.Append(record); err != nil {
			p.logError("append lead", "id", msg.ID, "error", err)
			continue
		}
		seen.Add(msg.ID)
		recorded++

		if p.archive != nil {
			if err := p.archive.Store(ctx, msg.ID, record); err != nil {
				p.logWarn("archive lead", "id", msg.ID, "error", err)
			}
		}

		p.logInfo("lead recorded",
			"qualified", record.Qualified,
			"source", record.Source,
			"from", record.SenderEmail,
			"score", math.Round(record.Score*100)/100,
			"title", record.Subject,
			"tags", strings.Join(result.Tags, ","),
		)

		if record.Qualified && p.notifier != nil {
			if err := p.notifier.Notify(ctx, record); err != nil {
				p.logWarn("alert failed, lead stays recorded", "id", msg.ID, "error", err)
			}
		}
	}

	return recorded, nil
}

func (p *Pipeline) evaluate(msg domain.RawMessage) (domain.LeadRecord, domain.ScoreResult) {
	body := extract.Normalize(msg.TextBody, msg.HTMLBody)
	fields := extract.Fields(msg.Subject, body, p.scoring.Cities)
	result := score.Evaluate(body, p.scoring.Keywords, p.scoring.HotIntents, p.scoring.Cities, fields.Price)

	captured := msg.ReceivedAt
	if captured.IsZero() {
		captured = time.Now().UTC()
	}

	return domain.LeadRecord{
		CapturedAt:  captured,
		Source:      fields.Source,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		Subject:     msg.Subject,
		Body:        extract.Compact(body, bodyBudget),
		URL:         fields.URL,
		City:        fields.City,
		Price:       fields.Price,
		Score:       result.Score,
		Qualified:   result.Score >= p.scoring.Threshold,
	}, result
}

// subjectAccepted gates messages on the configured substrings; an empty
// filter list accepts everything.
func (p *Pipeline) subjectAccepted(subject string) bool {
	if len(p.filters) == 0 {
		return true
	}
	lower := strings.ToLower(subject)
	for _, want := range p.filters {
		if want != "" && strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func (p *Pipeline) logInfo(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) logWarn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
