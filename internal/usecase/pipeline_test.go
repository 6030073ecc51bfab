package usecase

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"LeadScanner/internal/config"
	"LeadScanner/internal/domain"
	"LeadScanner/internal/infrastructure/storage"
	"LeadScanner/internal/ledger"
)

type fakeSource struct {
	messages []domain.RawMessage
}

func (f *fakeSource) FetchSince(ctx context.Context, since time.Time) ([]domain.RawMessage, error) {
	return f.messages, nil
}

type fakeSink struct {
	records []domain.LeadRecord
	fail    bool
}

func (f *fakeSink) Append(record domain.LeadRecord) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.records = append(f.records, record)
	return nil
}

type fakeNotifier struct {
	leads []domain.LeadRecord
	fail  bool
}

func (f *fakeNotifier) Notify(ctx context.Context, lead domain.LeadRecord) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.leads = append(f.leads, lead)
	return nil
}

func testScoring() config.ScoringConfig {
	return config.ScoringConfig{
		Threshold:  0.65,
		Keywords:   []string{"ceramic coating", "detail"},
		HotIntents: []string{"today"},
		Cities:     []string{"Dallas", "Plano"},
	}
}

func offerUpMessage(id string) domain.RawMessage {
	return domain.RawMessage{
		ID:          id,
		Subject:     "New OfferUp inquiry: ceramic coating today?",
		SenderName:  "Jamie Buyer",
		SenderEmail: "jamie@example.com",
		TextBody:    "Hi, interested in ceramic coating today! Price: 450. Dallas area.",
		ReceivedAt:  time.Date(2026, time.March, 14, 15, 9, 0, 0, time.UTC),
	}
}

func TestProcessBatchRecordsLead(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	pipeline := NewPipeline(PipelineDeps{
		Source:  &fakeSource{messages: []domain.RawMessage{offerUpMessage("m1")}},
		Sink:    sink,
		Scoring: testScoring(),
		Filters: config.FilterConfig{SubjectContains: []string{"inquiry"}},
	})

	seen := ledger.NewSet()
	recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if recorded != 1 || len(sink.records) != 1 {
		t.Fatalf("expected one recorded lead, got %d (%d rows)", recorded, len(sink.records))
	}

	record := sink.records[0]
	if record.Source != domain.SourceOfferUp {
		t.Fatalf("unexpected source: %q", record.Source)
	}
	if record.City != "Dallas" {
		t.Fatalf("unexpected city: %q", record.City)
	}
	if record.Price == nil || *record.Price != 450 {
		t.Fatalf("unexpected price: %v", record.Price)
	}
	if math.Abs(record.Score-0.34) > 1e-9 {
		t.Fatalf("score = %v, want 0.34", record.Score)
	}
	if record.Qualified {
		t.Fatalf("0.34 must not qualify at threshold 0.65")
	}
	if !seen.Contains("m1") {
		t.Fatalf("recorded message missing from ledger set")
	}
}

func TestProcessBatchSkipsUnmatchedSubject(t *testing.T) {
	t.Parallel()

	msg := offerUpMessage("m1")
	msg.Subject = "Weekly newsletter"

	sink := &fakeSink{}
	pipeline := NewPipeline(PipelineDeps{
		Source:  &fakeSource{messages: []domain.RawMessage{msg}},
		Sink:    sink,
		Scoring: testScoring(),
		Filters: config.FilterConfig{SubjectContains: []string{"inquiry", "interested"}},
	})

	seen := ledger.NewSet()
	recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if recorded != 0 || len(sink.records) != 0 {
		t.Fatalf("filtered message leaked into the log")
	}
	if seen.Contains("m1") {
		t.Fatalf("filtered message must stay invisible to the ledger")
	}
}

func TestProcessBatchSkipsAlreadyProcessed(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	pipeline := NewPipeline(PipelineDeps{
		Source:  &fakeSource{messages: []domain.RawMessage{offerUpMessage("dup")}},
		Sink:    sink,
		Scoring: testScoring(),
	})

	seen := ledger.NewSet()
	seen.Add("dup")

	recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if recorded != 0 || len(sink.records) != 0 {
		t.Fatalf("already-processed message was re-appended")
	}
}

func TestProcessBatchFailedAppendLeavesLedgerUntouched(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Source:  &fakeSource{messages: []domain.RawMessage{offerUpMessage("m1")}},
		Sink:    &fakeSink{fail: true},
		Scoring: testScoring(),
	})

	seen := ledger.NewSet()
	recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
	if err != nil {
		t.Fatalf("append failure must not abort the run: %v", err)
	}
	if recorded != 0 {
		t.Fatalf("failed append counted as recorded")
	}
	if seen.Contains("m1") {
		t.Fatalf("failed append must not mark the message processed")
	}
}

func TestProcessBatchNotifiesQualifiedLeads(t *testing.T) {
	t.Parallel()

	msg := offerUpMessage("hot")
	// Stack enough signals to clear the 0.65 bar.
	msg.TextBody = "ceramic coating and detail today today! Price: 450. Dallas and Plano area."

	scoring := testScoring()
	scoring.HotIntents = []string{"today", "today!"}
	scoring.Keywords = []string{"ceramic coating", "detail", "coating", "area"}

	notifier := &fakeNotifier{}
	sink := &fakeSink{}
	pipeline := NewPipeline(PipelineDeps{
		Source:   &fakeSource{messages: []domain.RawMessage{msg}},
		Sink:     sink,
		Notifier: notifier,
		Scoring:  scoring,
	})

	if _, err := pipeline.ProcessBatch(context.Background(), time.Time{}, ledger.NewSet()); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(sink.records) != 1 || !sink.records[0].Qualified {
		t.Fatalf("expected one qualified record, got %+v", sink.records)
	}
	if len(notifier.leads) != 1 {
		t.Fatalf("expected one alert, got %d", len(notifier.leads))
	}
}

func TestProcessBatchAlertFailureKeepsRecord(t *testing.T) {
	t.Parallel()

	msg := offerUpMessage("hot")
	msg.TextBody = "ceramic coating and detail today today! Price: 450. Dallas and Plano area."

	scoring := testScoring()
	scoring.HotIntents = []string{"today", "today!"}
	scoring.Keywords = []string{"ceramic coating", "detail", "coating", "area"}

	sink := &fakeSink{}
	seen := ledger.NewSet()
	pipeline := NewPipeline(PipelineDeps{
		Source:   &fakeSource{messages: []domain.RawMessage{msg}},
		Sink:     sink,
		Notifier: &fakeNotifier{fail: true},
		Scoring:  scoring,
	})

	recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
	if err != nil {
		t.Fatalf("alert failure must not abort the run: %v", err)
	}
	if recorded != 1 || len(sink.records) != 1 {
		t.Fatalf("alert failure unrecorded the lead")
	}
	if !seen.Contains("hot") {
		t.Fatalf("alert failure rolled back the ledger entry")
	}
}

func TestProcessBatchIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "leads.csv")
	store := ledger.NewStore(filepath.Join(dir, "processed.yaml"), nil)

	messages := []domain.RawMessage{offerUpMessage("m1"), offerUpMessage("m2")}
	run := func() int {
		pipeline := NewPipeline(PipelineDeps{
			Source:  &fakeSource{messages: messages},
			Sink:    storage.NewCSVWriter(csvPath),
			Scoring: testScoring(),
		})

		seen := store.Load()
		recorded, err := pipeline.ProcessBatch(context.Background(), time.Time{}, seen)
		if err != nil {
			t.Fatalf("ProcessBatch: %v", err)
		}
		if err := store.Save(seen); err != nil {
			t.Fatalf("save ledger: %v", err)
		}
		return recorded
	}

	if first := run(); first != 2 {
		t.Fatalf("first run recorded %d leads, want 2", first)
	}
	if second := run(); second != 0 {
		t.Fatalf("second run recorded %d leads, want 0", second)
	}
}
