// Package domain contains core domain types for the aftercare assistant.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// PatientRecord is a discharged patient's record as stored in the patient
// directory. Records are immutable once seeded; the conversation only reads
// them.
type PatientRecord struct {
	PatientID     string    `json:"patient_id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
	Diagnosis     string    `json:"diagnosis"`
	Symptoms      string    `json:"symptoms"`
	LabResults    string    `json:"lab_results"`
	TreatmentPlan string    `json:"treatment_plan"`
	Medications   string    `json:"medications"`
	DateAdmitted  string    `json:"date_admitted"`
	DoctorNotes   string    `json:"doctor_notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// patientIDPattern matches patient identifiers like NEP0008.
var patientIDPattern = regexp.MustCompile(`^[A-Z]{3}\d{3,}$`)

// IsPatientID reports whether s is a well-formed patient identifier.
func IsPatientID(s string) bool {
	return patientIDPattern.MatchString(strings.TrimSpace(s))
}

// MedicationList splits the comma-separated medications column into
// individual entries.
func (p *PatientRecord) MedicationList() []string {
	if p.Medications == "" {
		return nil
	}
	parts := strings.Split(p.Medications, ", ")
	out := make([]string, 0, len(parts))
	for _, m := range parts {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// DischargeReport is the structured summary handed to a patient at release.
// The dietary/follow-up boilerplate mirrors the discharge paperwork the
// nephrology clinic issues for every patient.
type DischargeReport struct {
	PatientName           string   `json:"patient_name"`
	DischargeDate         string   `json:"discharge_date"`
	PrimaryDiagnosis      string   `json:"primary_diagnosis"`
	Medications           []string `json:"medications"`
	DietaryRestrictions   string   `json:"dietary_restrictions"`
	FollowUp              string   `json:"follow_up"`
	WarningSigns          string   `json:"warning_signs"`
	DischargeInstructions string   `json:"discharge_instructions"`
}

// DischargeReport derives the discharge summary from the record.
func (p *PatientRecord) DischargeReport() DischargeReport {
	return DischargeReport{
		PatientName:           p.Name,
		DischargeDate:         p.DateAdmitted,
		PrimaryDiagnosis:      p.Diagnosis,
		Medications:           p.MedicationList(),
		DietaryRestrictions:   "Low sodium (2g/day), fluid restriction as advised",
		FollowUp:              "Nephrology clinic in 1-2 weeks",
		WarningSigns:          "Swelling, shortness of breath, decreased urine output",
		DischargeInstructions: "Take medications as prescribed, monitor symptoms",
	}
}
