// Package audit implements the append-only JSON-lines audit trail.
//
// Events are fire-and-forget: callers enqueue and move on, a single
// background goroutine writes NDJSON lines to per-event-type files. Nothing
// in the conversation core ever reads these files back.
package audit

import (
	"time"
)

// Event is one audit line. Fields are a union across event types; encoding
// omits what a given type leaves empty.
type Event struct {
	EventID         string         `json:"event_id"`
	Timestamp       string         `json:"timestamp"`
	SessionID       string         `json:"session_id,omitempty"`
	InteractionType string         `json:"interaction_type"`
	UserMessage     string         `json:"user_message,omitempty"`
	AgentResponse   string         `json:"agent_response,omitempty"`
	AgentUsed       string         `json:"agent_used,omitempty"`
	Sources         []string       `json:"sources,omitempty"`
	FromAgent       string         `json:"from_agent,omitempty"`
	ToAgent         string         `json:"to_agent,omitempty"`
	HandoffReason   string         `json:"handoff_reason,omitempty"`
	Context         string         `json:"context,omitempty"`
	SourceType      string         `json:"source_type,omitempty"`
	Query           string         `json:"query,omitempty"`
	Success         *bool          `json:"success,omitempty"`
	ResponseLength  int            `json:"response_length,omitempty"`
	FlowStep        string         `json:"flow_step,omitempty"`
	Details         string         `json:"details,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Event type discriminators written to interaction_type.
const (
	typeInteraction = "user_interaction"
	typeHandoff     = "agent_handoff"
	typeRetrieval   = "information_retrieval"
	typeFlow        = "system_flow"
)

// Logger receives audit events. Implementations must never block the caller.
type Logger interface {
	// LogInteraction records a full user turn with the assistant's reply.
	LogInteraction(sessionID, userMessage, agentResponse, agentUsed string, sources []string, metadata map[string]any)

	// LogHandoff records the router's transition to medical-query handling.
	LogHandoff(sessionID, fromAgent, toAgent, reason, context string)

	// LogRetrieval records one knowledge-source call and its outcome.
	LogRetrieval(sessionID, sourceType, query string, success bool, responseLength int)

	// LogFlow records a routing decision or other system step.
	LogFlow(sessionID, flowStep, details string)

	// Close flushes queued events and releases the writer.
	Close() error
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Noop is a Logger that discards everything.
type Noop struct{}

func (Noop) LogInteraction(string, string, string, string, []string, map[string]any) {}
func (Noop) LogHandoff(string, string, string, string, string)                       {}
func (Noop) LogRetrieval(string, string, string, bool, int)                          {}
func (Noop) LogFlow(string, string, string)                                          {}
func (Noop) Close() error                                                            { return nil }
