package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Config controls the audit trail writer.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Writer is the file-backed Logger. Events go through a bounded queue so a
// slow disk never stalls a conversation turn; when the queue is full the
// event is dropped with a warning.
type Writer struct {
	cfg  Config
	log  *slog.Logger
	ch   chan Event
	done chan struct{}

	mu    sync.Mutex
	files map[string]*os.File
}

// NewWriter creates the audit trail writer and starts its drain goroutine.
func NewWriter(cfg Config, log *slog.Logger) (*Writer, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	w := &Writer{
		cfg:   cfg,
		log:   log,
		ch:    make(chan Event, cfg.QueueSize),
		done:  make(chan struct{}),
		files: make(map[string]*os.File),
	}
	go w.drain()
	return w, nil
}

func (w *Writer) enqueue(ev Event) {
	if !w.cfg.Enabled {
		return
	}
	ev.EventID = uuid.NewString()
	ev.Timestamp = now()
	select {
	case w.ch <- ev:
	default:
		w.log.Warn("Audit queue full, dropping event",
			"interaction_type", ev.InteractionType, "session_id", ev.SessionID)
	}
}

func (w *Writer) drain() {
	defer close(w.done)
	for ev := range w.ch {
		if err := w.write(ev); err != nil {
			w.log.Warn("Failed to write audit event", "error", err)
		}
	}
}

// fileFor returns the per-event-type NDJSON file, opening it on first use.
func (w *Writer) fileFor(interactionType string) (*os.File, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if f, ok := w.files[interactionType]; ok {
		return f, nil
	}
	path := filepath.Join(w.cfg.Dir, interactionType+"s.ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit file %s: %w", path, err)
	}
	w.files[interactionType] = f
	return f, nil
}

func (w *Writer) write(ev Event) error {
	f, err := w.fileFor(ev.InteractionType)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// LogInteraction records a full user turn with the assistant's reply.
func (w *Writer) LogInteraction(sessionID, userMessage, agentResponse, agentUsed string, sources []string, metadata map[string]any) {
	w.enqueue(Event{
		SessionID:       sessionID,
		InteractionType: typeInteraction,
		UserMessage:     userMessage,
		AgentResponse:   agentResponse,
		AgentUsed:       agentUsed,
		Sources:         sources,
		Metadata:        metadata,
	})
}

// LogHandoff records the router's transition between conversation roles.
func (w *Writer) LogHandoff(sessionID, fromAgent, toAgent, reason, context string) {
	w.enqueue(Event{
		SessionID:       sessionID,
		InteractionType: typeHandoff,
		FromAgent:       fromAgent,
		ToAgent:         toAgent,
		HandoffReason:   reason,
		Context:         context,
	})
}

// LogRetrieval records one knowledge-source call and its outcome.
func (w *Writer) LogRetrieval(sessionID, sourceType, query string, success bool, responseLength int) {
	w.enqueue(Event{
		SessionID:       sessionID,
		InteractionType: typeRetrieval,
		SourceType:      sourceType,
		Query:           query,
		Success:         &success,
		ResponseLength:  responseLength,
	})
}

// LogFlow records a routing decision or other system step.
func (w *Writer) LogFlow(sessionID, flowStep, details string) {
	w.enqueue(Event{
		SessionID:       sessionID,
		InteractionType: typeFlow,
		FlowStep:        flowStep,
		Details:         details,
	})
}

// Close flushes queued events and closes all open files.
func (w *Writer) Close() error {
	close(w.ch)
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	var firstErr error
	for name, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close audit file %s: %w", name, err)
		}
	}
	w.files = make(map[string]*os.File)
	return firstErr
}
