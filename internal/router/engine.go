// Package router implements the conversation flow: patient identification,
// stage transitions and the handoff from small talk to clinical answers.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nephroline/aftercare/internal/audit"
	"github.com/nephroline/aftercare/internal/classifier"
	"github.com/nephroline/aftercare/internal/domain"
	"github.com/nephroline/aftercare/internal/knowledge"
	"github.com/nephroline/aftercare/internal/session"
	"github.com/nephroline/aftercare/internal/store"
)

// maxCandidates caps the disambiguation list offered after an ambiguous
// name match.
const maxCandidates = 6

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	SessionID         string            `json:"session_id"`
	Response          string            `json:"response"`
	AgentUsed         string            `json:"agent_used"`
	Sources           []string          `json:"sources"`
	SourceDetails     map[string]string `json:"source_details,omitempty"`
	ConsultationType  string            `json:"consultation_type,omitempty"`
	Status            string            `json:"status"`
	Stage             domain.Stage      `json:"conversation_stage"`
	PatientIdentified bool              `json:"patient_identified"`
}

// Consulter answers clinical questions. Satisfied by *knowledge.Service.
type Consulter interface {
	Answer(ctx context.Context, q knowledge.Query) *knowledge.Consultation
}

// ConversationEngine processes inbound chat messages against session state.
type ConversationEngine interface {
	// HandleTurn runs one turn. It never fails outright: lookup errors,
	// knowledge failures and panics all surface as a result with status
	// "error" so the transport always has a reply to send.
	HandleTurn(ctx context.Context, sessionID, message string) *TurnResult
}

// Engine is the production ConversationEngine.
type Engine struct {
	repo      store.Repository
	sessions  session.Store
	knowledge Consulter
	audit     audit.Logger
	log       *slog.Logger

	greetSeq     atomic.Uint64
	encourageSeq atomic.Uint64
}

// New wires a conversation engine.
func New(repo store.Repository, sessions session.Store, consulter Consulter, auditLog audit.Logger, log *slog.Logger) *Engine {
	if auditLog == nil {
		auditLog = audit.Noop{}
	}
	return &Engine{
		repo:      repo,
		sessions:  sessions,
		knowledge: consulter,
		audit:     auditLog,
		log:       log,
	}
}

// HandleTurn implements ConversationEngine.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (result *TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Conversation turn panicked", "panic", r, "session_id", sessionID)
			result = &TurnResult{
				SessionID: sessionID,
				Response:  panicApology,
				AgentUsed: agentSystem,
				Sources:   []string{},
				Status:    "error",
			}
		}
	}()

	msg := strings.TrimSpace(message)
	cls := classifier.Classify(msg)

	s := e.sessions.Get(sessionID)
	if s == nil {
		s = domain.NewSession(sessionID)
	}

	// A name-shaped message restarts identification from any stage, so a
	// patient can hand the chat to someone else mid-session.
	if cls.LooksLikeName && s.Stage != domain.StageInitial {
		e.audit.LogFlow(sessionID, "session_reset", "name-like message restarted identification")
		s.Reset()
	}

	switch s.Stage {
	case domain.StageInitial:
		result = e.handleInitial(ctx, s, msg, cls)
	case domain.StageAwaitingPatientID:
		result = e.handleAwaitingID(ctx, s, cls)
	case domain.StagePatientFound:
		result = e.handlePatientFound(ctx, s, msg, cls)
	case domain.StageMedicalRouting:
		result = e.handleMedicalRouting(ctx, s, msg, cls)
	default:
		result = e.receptionistReply("I'm sorry, I didn't understand. Could you please rephrase?")
	}

	s.UpdatedAt = time.Now()
	e.sessions.Put(s)

	result.SessionID = sessionID
	result.Stage = s.Stage
	result.PatientIdentified = s.Identified()

	e.audit.LogInteraction(sessionID, msg, result.Response, result.AgentUsed, result.Sources, map[string]any{
		"stage":             string(s.Stage),
		"consultation_type": result.ConsultationType,
	})
	return result
}

func (e *Engine) receptionistReply(text string) *TurnResult {
	return &TurnResult{
		Response:  text,
		AgentUsed: agentReceptionist,
		Sources:   []string{},
		Status:    "success",
	}
}

func (e *Engine) handleInitial(ctx context.Context, s *domain.Session, msg string, cls classifier.Classification) *TurnResult {
	// An explicit patient ID resolves immediately, skipping the name flow.
	if cls.PatientID != "" {
		p, err := e.repo.GetPatient(ctx, cls.PatientID)
		if err == nil {
			s.Bind(p)
			e.audit.LogFlow(s.ID, "patient_identified", "resolved by ID "+p.PatientID)
			return e.receptionistReply(foundByIDGreeting(p.Name, p.Diagnosis))
		}
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error("Patient ID lookup failed", "error", err, "patient_id", cls.PatientID)
		}
		return e.receptionistReply(idNotFoundReply(cls.PatientID))
	}

	if cls.LooksLikeName {
		e.audit.LogFlow(s.ID, "patient_lookup_start", "looking up: "+msg)
		patients, err := e.repo.FindPatients(ctx, msg)
		if err != nil {
			e.log.Error("Patient lookup failed", "error", err, "query", msg)
			return &TurnResult{
				Response:  "Hello! I'm having trouble accessing your records. Please try again later.",
				AgentUsed: agentReceptionist,
				Sources:   []string{},
				Status:    "error",
			}
		}

		switch len(patients) {
		case 0:
			return e.receptionistReply(notFoundReply(msg))
		case 1:
			p := &patients[0]
			s.Bind(p)
			e.audit.LogFlow(s.ID, "patient_identified", "unique name match "+p.PatientID)
			return e.receptionistReply(FoundGreeting(p.Name, p.DateAdmitted, p.Diagnosis))
		default:
			if len(patients) > maxCandidates {
				patients = patients[:maxCandidates]
			}
			s.Candidates = patients
			s.Stage = domain.StageAwaitingPatientID
			s.PatientName = msg

			var b strings.Builder
			b.WriteString("I found multiple patients with that name. Please reply with your patient ID (e.g., NEP0008).\nMatches:\n")
			for _, c := range patients {
				fmt.Fprintf(&b, "- %s: %s (age %d, dx %s)\n", c.PatientID, c.Name, c.Age, c.Diagnosis)
			}
			return e.receptionistReply(strings.TrimRight(b.String(), "\n"))
		}
	}

	// Neither a name nor an ID: ask who we are talking to.
	greeting := askNameGreetings[e.greetSeq.Add(1)%uint64(len(askNameGreetings))]
	return e.receptionistReply(greeting)
}

func (e *Engine) handleAwaitingID(ctx context.Context, s *domain.Session, cls classifier.Classification) *TurnResult {
	if cls.PatientID != "" {
		p, err := e.repo.GetPatient(ctx, cls.PatientID)
		if err == nil {
			s.Bind(p)
			e.audit.LogFlow(s.ID, "patient_identified", "disambiguated by ID "+p.PatientID)
			return e.receptionistReply(resolvedByIDReply(p.PatientID))
		}
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error("Patient ID lookup failed", "error", err, "patient_id", cls.PatientID)
		}
	}
	return e.receptionistReply(repromptPatientID)
}

func (e *Engine) handlePatientFound(ctx context.Context, s *domain.Session, msg string, cls classifier.Classification) *TurnResult {
	if !cls.IsMedical {
		reply := encouragements[e.encourageSeq.Add(1)%uint64(len(encouragements))] + encouragementSuffix
		return e.receptionistReply(reply)
	}

	// First medical concern: hand the session over to the clinical flow.
	s.Stage = domain.StageMedicalRouting
	e.audit.LogHandoff(s.ID, agentReceptionist, agentClinical,
		"Medical concern detected in patient message",
		fmt.Sprintf("Patient: %s, Message: %s", s.Patient.Name, truncate(msg, 100)))

	c := e.consult(ctx, s, msg, cls)
	if c.Status != "success" {
		return &TurnResult{
			Response:  routingMessage + "\n\n" + c.Guidance,
			AgentUsed: agentHandoff,
			Sources:   c.Sources,
			Status:    "error",
		}
	}
	return &TurnResult{
		Response:         routingMessage + "\n\n**Clinical Agent Response:**\n" + c.Guidance,
		AgentUsed:        agentHandoff,
		Sources:          c.Sources,
		SourceDetails:    c.SourceDetails,
		ConsultationType: c.Type,
		Status:           "success",
	}
}

func (e *Engine) handleMedicalRouting(ctx context.Context, s *domain.Session, msg string, cls classifier.Classification) *TurnResult {
	c := e.consult(ctx, s, msg, cls)
	status := "success"
	if c.Status != "success" {
		status = "error"
	}
	return &TurnResult{
		Response:         c.Guidance,
		AgentUsed:        agentClinical,
		Sources:          c.Sources,
		SourceDetails:    c.SourceDetails,
		ConsultationType: c.Type,
		Status:           status,
	}
}

// consult forwards the question to the knowledge layer. Encyclopedic
// questions go through bare; anything personal carries the discharge context.
func (e *Engine) consult(ctx context.Context, s *domain.Session, msg string, cls classifier.Classification) *knowledge.Consultation {
	q := knowledge.Query{
		SessionID:    s.ID,
		Question:     msg,
		NeedsRecency: cls.NeedsRecency,
	}
	if s.Patient != nil && (cls.IsPatientSpecific || !cls.IsGeneralQuestion) {
		q.PatientContext = patientContext(s.Patient, msg)
	}
	return e.knowledge.Answer(ctx, q)
}

func patientContext(p *domain.PatientRecord, question string) string {
	return fmt.Sprintf(`
Patient Context:
- Name: %s
- Diagnosis: %s
- Medications: %s
- Discharge Date: %s

Patient Question: %s

Please provide specific medical guidance considering this patient's discharge information.
`, p.Name, p.Diagnosis, p.Medications, p.DateAdmitted, question)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
