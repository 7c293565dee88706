package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/futig/jarvis-backend/internal/entity"
)

// transientErr is retried by the retry helper
type transientErr struct{}

func (transientErr) Error() string   { return "connection reset" }
func (transientErr) Temporary() bool { return true }

type fakeEmbedder struct {
	mu        sync.Mutex
	inputs    []string
	err       error
	failTimes int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, text)
	if f.failTimes > 0 {
		f.failTimes--
		return nil, transientErr{}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeStore struct {
	mu       sync.Mutex
	records  map[string]entity.MemoryRecord
	upserts  int
	queries  int
	lastTopK int
	matches  []entity.MemoryMatch
	queryErr error
	upErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]entity.MemoryRecord{}}
}

func (f *fakeStore) Query(_ context.Context, _ []float32, topK int) ([]entity.MemoryMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries++
	f.lastTopK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeStore) Upsert(ctx context.Context, records []entity.MemoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.upErr != nil {
		return f.upErr
	}
	f.upserts++
	for _, r := range records {
		f.records[r.ID] = r
	}
	return nil
}

func (f *fakeStore) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	genErrs  int
}

func (o *recordingObserver) ObserveExchange(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObserveStage(string, time.Duration) {}

func (o *recordingObserver) ObserveGenerationError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.genErrs++
}

var errBoom = errors.New("boom")
