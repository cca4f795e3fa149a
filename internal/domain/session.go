package domain

import (
	"time"
)

// Stage identifies where a conversation session is in the identification
// and routing flow.
type Stage string

const (
	// StageInitial is the entry stage; the assistant is waiting for a name
	// or patient ID.
	StageInitial Stage = "initial"
	// StageAwaitingPatientID means a name matched several records and only
	// an explicit patient ID can disambiguate.
	StageAwaitingPatientID Stage = "awaiting_patient_id"
	// StagePatientFound means the session is bound to exactly one record.
	StagePatientFound Stage = "patient_found"
	// StageMedicalRouting means a medical concern was detected; every
	// subsequent message is answered via the knowledge sources.
	StageMedicalRouting Stage = "medical_routing"
)

// Session holds per-conversation state. A session is either unidentified
// (Patient == nil) or bound to exactly one patient record; an ambiguous name
// match parks the session in StageAwaitingPatientID until an ID resolves it.
type Session struct {
	ID          string          `json:"id"`
	Stage       Stage           `json:"stage"`
	PatientName string          `json:"patient_name,omitempty"`
	Patient     *PatientRecord  `json:"patient,omitempty"`
	Candidates  []PatientRecord `json:"candidates,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewSession returns a fresh session in the initial stage.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Stage:     StageInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Identified reports whether the session is bound to a patient record.
func (s *Session) Identified() bool {
	return s.Patient != nil
}

// Bind attaches a patient record and advances the session to
// StagePatientFound. Any disambiguation candidates are discarded.
func (s *Session) Bind(p *PatientRecord) {
	s.Patient = p
	s.PatientName = p.Name
	s.Candidates = nil
	s.Stage = StagePatientFound
	s.UpdatedAt = time.Now()
}

// Reset clears identification state and returns the session to the initial
// stage. Used when a new name-like message arrives while idle.
func (s *Session) Reset() {
	s.Stage = StageInitial
	s.PatientName = ""
	s.Patient = nil
	s.Candidates = nil
	s.UpdatedAt = time.Now()
}
