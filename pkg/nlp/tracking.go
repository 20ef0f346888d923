package nlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// OracleCallRecord represents a single log entry for an oracle call
type OracleCallRecord struct {
	ID               string    `parquet:"id"`
	Timestamp        time.Time `parquet:"timestamp"`
	Model            string    `parquet:"model"`
	RunID            string    `parquet:"run_id"`
	Stage            string    `parquet:"stage"`
	Concept          string    `parquet:"concept"`
	DurationMillis   int64     `parquet:"duration_millis"`
	TotalTokens      int       `parquet:"total_tokens"`
	PromptTokens     int       `parquet:"prompt_tokens"`
	CompletionTokens int       `parquet:"completion_tokens"`
	Failed           bool      `parquet:"failed"`
}

// ParquetCallTracker handles persistence of oracle call stats to Parquet files
type ParquetCallTracker struct {
	outputDir string
	mu        sync.Mutex
	buffer    []OracleCallRecord
	batchSize int
}

// NewCallTracker creates a new oracle call tracker writing to a directory
func NewCallTracker(outputDir string) (*ParquetCallTracker, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create call tracking directory: %w", err)
	}

	tracker := &ParquetCallTracker{
		outputDir: outputDir,
		buffer:    make([]OracleCallRecord, 0, 100),
		batchSize: 100,
	}

	return tracker, nil
}

// AddCall records one oracle call. Pipeline context (run ID, stage, concept)
// is read from ctx when present.
func (t *ParquetCallTracker) AddCall(ctx context.Context, resp *types.Response, model string, duration time.Duration, failed bool) error {
	record := OracleCallRecord{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Model:          model,
		DurationMillis: duration.Milliseconds(),
		Failed:         failed,
	}

	if resp != nil && resp.TokensUsed != nil {
		record.TotalTokens = resp.TokensUsed.TotalTokens
		record.PromptTokens = resp.TokensUsed.PromptTokens
		record.CompletionTokens = resp.TokensUsed.CompletionTokens
	}

	if v, ok := ctx.Value(types.ContextKeyRunID).(string); ok {
		record.RunID = v
	}
	if v, ok := ctx.Value(types.ContextKeyStage).(types.Stage); ok {
		record.Stage = string(v)
	}
	if v, ok := ctx.Value(types.ContextKeyConcept).(string); ok {
		record.Concept = v
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.buffer = append(t.buffer, record)

	if len(t.buffer) >= t.batchSize {
		return t.flush()
	}

	return nil
}

// Flush writes any buffered records to disk.
func (t *ParquetCallTracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (t *ParquetCallTracker) flush() error {
	if len(t.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("oracle_calls_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(t.outputDir, filename)

	if err := parquet.WriteFile(path, t.buffer); err != nil {
		return fmt.Errorf("failed to write oracle call parquet file: %w", err)
	}

	t.buffer = t.buffer[:0]
	return nil
}

// TrackingClient wraps a Client to record per-call telemetry
type TrackingClient struct {
	client  Client
	tracker *ParquetCallTracker
}

// NewTrackingClient creates a wrapper client
func NewTrackingClient(client Client, tracker *ParquetCallTracker) *TrackingClient {
	return &TrackingClient{
		client:  client,
		tracker: tracker,
	}
}

// Chat implements Client
func (c *TrackingClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	start := time.Now()
	resp, err := c.client.Chat(ctx, messages)
	duration := time.Since(start)

	model := "unknown"
	if resp != nil && resp.Model != "" {
		model = resp.Model
	}

	// Telemetry failures never mask the call result.
	_ = c.tracker.AddCall(ctx, resp, model, duration, err != nil)

	return resp, err
}

// Close implements Client, flushing any buffered records.
func (c *TrackingClient) Close() error {
	if err := c.tracker.Flush(); err != nil {
		return err
	}
	return c.client.Close()
}

// GetCapabilities returns the list of capabilities supported by this client.
func (c *TrackingClient) GetCapabilities() []TaskCapability {
	return c.client.GetCapabilities()
}
