package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/CrudyLame/convlens/internal/analysis"
	"github.com/CrudyLame/convlens/internal/conv"
)

// saveEvery is how many completed conversations trigger an incremental
// results write.
const saveEvery = 50

// Mapper classifies one conversation through the LLM.
type Mapper interface {
	Map(ctx context.Context, c *conv.Conversation) (*analysis.Result, error)
}

// Recorder persists analyzed conversations; nil disables persistence
// (dry runs, missing DATABASE_URL).
type Recorder interface {
	WriteConversation(ctx context.Context, c *conv.Conversation, res *analysis.Result) error
}

// Publisher announces batch events on the bus; nil disables publishing.
type Publisher interface {
	Publish(subject string, data any) error
}

// Event subjects emitted during a run.
const (
	SubjectConversationAnalyzed = "assist.convlens.conversation.analyzed"
	SubjectBatchCompleted       = "assist.convlens.batch.completed"
)

// Config holds the batch run settings.
type Config struct {
	MaxConcurrent int
	ResultsFile   string
	ProgressFile  string
	SourceFile    string
	TimeThreshold time.Duration
}

// Processor drives the map-and-persist pipeline for a batch of parsed
// conversations. Conversations are independent: mapping runs concurrently
// under an injected admission gate, one failure never aborts siblings, and
// the results artifact is re-sorted by dialogue id regardless of completion
// order.
type Processor struct {
	cfg    Config
	mapper Mapper
	store  Recorder
	events Publisher
	sem    *semaphore.Weighted
	logger *slog.Logger

	mu      sync.Mutex
	state   RunState
	records []Record

	// flushMu serializes artifact writes: two completions can cross the
	// incremental-save boundary at once, and concurrent WriteFile calls on
	// the same path would tear the results file.
	flushMu sync.Mutex
}

func New(cfg Config, m Mapper, store Recorder, events Publisher, logger *slog.Logger) *Processor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Processor{
		cfg:    cfg,
		mapper: m,
		store:  store,
		events: events,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger: logger,
	}
}

// Snapshot returns a copy of the current run state for the progress endpoint.
func (p *Processor) Snapshot() RunState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run processes the batch and returns the final run state. Cancelling the
// context stops admission of new conversations; in-flight calls finish or
// abort on their own, and everything completed so far is flushed to the
// results file.
func (p *Processor) Run(ctx context.Context, conversations []*conv.Conversation) (RunState, error) {
	p.mu.Lock()
	p.state = RunState{
		StartedAt: time.Now().UTC(),
		Total:     len(conversations),
	}
	p.records = nil
	p.mu.Unlock()

	p.logger.Info("batch run starting",
		"conversations", len(conversations),
		"max_concurrent", p.cfg.MaxConcurrent,
	)

	var wg sync.WaitGroup
	for _, c := range conversations {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			// Cancelled while waiting for a slot; stop admitting.
			break
		}
		wg.Add(1)
		go func(c *conv.Conversation) {
			defer wg.Done()
			defer p.sem.Release(1)
			p.processOne(ctx, c)
		}(c)
	}
	wg.Wait()

	if err := p.flush(); err != nil {
		p.logger.Error("failed to write results", "error", err)
	}
	p.saveProgress()

	state := p.Snapshot()

	if p.events != nil {
		if err := p.events.Publish(SubjectBatchCompleted, map[string]any{
			"total":     state.Total,
			"succeeded": state.Succeeded,
			"failed":    state.Failed,
		}); err != nil {
			p.logger.Warn("failed to publish batch completion", "error", err)
		}
	}

	p.logger.Info("batch run complete",
		"total", state.Total,
		"succeeded", state.Succeeded,
		"failed", state.Failed,
	)

	if err := ctx.Err(); err != nil {
		return state, err
	}
	return state, nil
}

func (p *Processor) processOne(ctx context.Context, c *conv.Conversation) {
	res, err := p.mapper.Map(ctx, c)
	if err != nil {
		p.logger.Error("mapping failed", "dialogue_id", c.DialogueID, "error", err)
		p.complete(c, nil, err)
		return
	}

	if p.store != nil {
		if err := p.store.WriteConversation(ctx, c, res); err != nil {
			p.logger.Error("persist failed", "dialogue_id", c.DialogueID, "error", err)
			p.complete(c, res, err)
			return
		}
	}

	if p.events != nil {
		if err := p.events.Publish(SubjectConversationAnalyzed, map[string]any{
			"dialogue_id":   c.DialogueID,
			"agent_types":   c.AgentTypes(),
			"sentiment":     res.Sentiment,
			"is_successful": res.IsSuccessful,
		}); err != nil {
			p.logger.Warn("failed to publish analyzed event", "dialogue_id", c.DialogueID, "error", err)
		}
	}

	p.complete(c, res, nil)
}

// complete records the outcome for one conversation. A failed conversation
// still gets a record (without analysis) so the artifact accounts for the
// whole batch.
func (p *Processor) complete(c *conv.Conversation, res *analysis.Result, err error) {
	rec := NewRecord(c, res)
	if err != nil {
		rec.Error = err.Error()
		rec.Analysis = nil
	}

	p.mu.Lock()
	p.records = append(p.records, rec)
	p.state.Processed++
	if err != nil {
		p.state.Failed++
		p.state.addError(err.Error())
	} else {
		p.state.Succeeded++
	}
	needFlush := p.state.Processed%saveEvery == 0
	p.mu.Unlock()

	if needFlush {
		if ferr := p.flush(); ferr != nil {
			p.logger.Error("incremental results write failed", "error", ferr)
		}
		p.saveProgress()
	}
}

func (p *Processor) flush() error {
	if p.cfg.ResultsFile == "" {
		return nil
	}
	p.mu.Lock()
	records := make([]Record, len(p.records))
	copy(records, p.records)
	p.mu.Unlock()

	p.flushMu.Lock()
	defer p.flushMu.Unlock()
	return writeResults(p.cfg.ResultsFile, p.cfg.SourceFile, p.cfg.TimeThreshold, records)
}

func (p *Processor) saveProgress() {
	if p.cfg.ProgressFile == "" {
		return
	}
	p.flushMu.Lock()
	defer p.flushMu.Unlock()
	if err := p.Snapshot().save(p.cfg.ProgressFile); err != nil {
		p.logger.Warn("failed to save progress", "error", err)
	}
}
