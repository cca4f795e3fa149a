package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nephroline/aftercare/internal/audit"
)

// Consultation type labels, most informative source mix first.
const (
	TypeComprehensive  = "comprehensive"
	TypeReferenceBased = "reference_based"
	TypeReferenceOnly  = "reference_only"
	TypeWebFallback    = "web_fallback"
)

// Source labels reported to clients.
const (
	SourceReference = "Reference Materials"
	SourceWebSearch = "Web Search"
)

// disclaimer closes every successful consultation, whatever the source mix.
const disclaimer = "⚠️ **IMPORTANT:** This is an AI assistant for educational purposes only. Always consult healthcare professionals for medical advice."

// Query is one clinical question to answer.
type Query struct {
	SessionID string
	// Question is the user's message as typed.
	Question string
	// PatientContext, when set, is prepended for the reference lookup only.
	// The literature search always runs on the bare question.
	PatientContext string
	// NeedsRecency marks questions about recent or historical findings that
	// the static reference corpus cannot settle alone.
	NeedsRecency bool
}

// Consultation is the composed answer with its source provenance.
type Consultation struct {
	Status        string            `json:"status"`
	Guidance      string            `json:"medical_guidance"`
	Sources       []string          `json:"sources"`
	SourceDetails map[string]string `json:"source_details,omitempty"`
	Type          string            `json:"consultation_type,omitempty"`
}

// Service composes answers from the reference corpus and literature search,
// degrading gracefully when either source comes up short.
type Service struct {
	ref    Reference
	search Searcher
	drugs  *SimulatedSearch
	audit  audit.Logger
	log    *slog.Logger

	// minReferenceLen is the shortest reference answer treated as usable.
	minReferenceLen int
}

// NewService wires the knowledge sources together.
func NewService(ref Reference, search Searcher, auditLog audit.Logger, log *slog.Logger) *Service {
	if auditLog == nil {
		auditLog = audit.Noop{}
	}
	return &Service{
		ref:             ref,
		search:          search,
		drugs:           NewSimulatedSearch(),
		audit:           auditLog,
		log:             log,
		minReferenceLen: 20,
	}
}

// Answer resolves a clinical question. The reference corpus is always tried
// first; the literature search joins in only for recency-sensitive questions.
// Failures of either source never surface as errors, only as a degraded
// consultation, so the caller always has something to say.
func (s *Service) Answer(ctx context.Context, q Query) *Consultation {
	fullQuestion := q.Question
	if q.PatientContext != "" {
		fullQuestion = q.PatientContext
	}

	refText, refErr := s.ref.Query(ctx, fullQuestion)
	refAvailable := refErr == nil && len(strings.TrimSpace(refText)) >= s.minReferenceLen
	if refErr != nil {
		s.log.Warn("Reference lookup failed", "error", refErr, "session_id", q.SessionID)
	}
	s.audit.LogRetrieval(q.SessionID, "rag", q.Question, refAvailable, len(refText))

	var c *Consultation
	if q.NeedsRecency {
		results, webErr := s.search.Search(q.Question)
		webAvailable := webErr == nil && len(results) > 0
		if webErr != nil {
			s.log.Warn("Literature search failed", "error", webErr, "session_id", q.SessionID)
		}
		s.audit.LogRetrieval(q.SessionID, "web_search", q.Question, webAvailable, len(results))

		c = s.composeWithSearch(q.Question, refText, refAvailable, results, webAvailable)
	} else {
		c = s.composeReferenceOnly(refText, refAvailable)
	}

	if c.Status == "success" {
		if name, info, ok := s.drugs.DrugInformation(q.Question); ok {
			c.Guidance += "\n\n" + FormatDrugInfo(name, info)
		}
		c.Guidance += "\n\n" + disclaimer
	}
	return c
}

func (s *Service) composeWithSearch(question, refText string, refAvailable bool, results []SearchResult, webAvailable bool) *Consultation {
	switch {
	case refAvailable && webAvailable:
		guidance := fmt.Sprintf(`📚 **REFERENCE MATERIALS** (Comprehensive Clinical Nephrology):
%s

🌐 **RECENT MEDICAL LITERATURE** (Web Search):
This requires recent information. Let me search for you...

%s

📋 **SOURCE SUMMARY:**
• Reference Materials: Established medical knowledge from peer-reviewed textbook
• Web Search: Recent research findings and current medical literature`,
			refText, FormatResults(results, question))
		return &Consultation{
			Status:   "success",
			Guidance: guidance,
			Sources:  []string{SourceReference, SourceWebSearch},
			SourceDetails: map[string]string{
				"reference_materials": "Comprehensive Clinical Nephrology (peer-reviewed textbook)",
				"web_search":          "Recent medical literature and research findings",
			},
			Type: TypeComprehensive,
		}

	case webAvailable:
		guidance := fmt.Sprintf(`This requires recent information. Let me search for you...

🌐 **RECENT MEDICAL LITERATURE** (Web Search):
%s

⚠️ **NOTE:** Primary reference materials had insufficient information for this query. Response based on recent medical literature.`,
			FormatResults(results, question))
		return &Consultation{
			Status:   "success",
			Guidance: guidance,
			Sources:  []string{SourceWebSearch},
			SourceDetails: map[string]string{
				"web_search": "Recent medical literature (reference fallback)",
			},
			Type: TypeWebFallback,
		}

	case refAvailable:
		guidance := fmt.Sprintf(`📚 **REFERENCE MATERIALS** (Comprehensive Clinical Nephrology):
%s

⚠️ **NOTE:** Recent medical literature search was unavailable. Response based on established medical knowledge from peer-reviewed reference materials.`,
			refText)
		return &Consultation{
			Status:   "success",
			Guidance: guidance,
			Sources:  []string{SourceReference},
			SourceDetails: map[string]string{
				"reference_materials": "Comprehensive Clinical Nephrology (peer-reviewed textbook)",
			},
			Type: TypeReferenceOnly,
		}

	default:
		return &Consultation{
			Status:   "error",
			Guidance: "I apologize, but I'm unable to provide sufficient medical guidance for this query. Both reference materials and recent literature searches were insufficient. Please consult with a healthcare professional.",
			Sources:  []string{},
		}
	}
}

func (s *Service) composeReferenceOnly(refText string, refAvailable bool) *Consultation {
	if !refAvailable {
		return &Consultation{
			Status:   "error",
			Guidance: "I apologize, but I'm unable to access medical reference materials at this time. Please consult with a healthcare professional.",
			Sources:  []string{},
		}
	}
	guidance := fmt.Sprintf(`📚 **REFERENCE MATERIALS** (Comprehensive Clinical Nephrology):
%s

📋 **SOURCE:** This information is from the Comprehensive Clinical Nephrology textbook, a peer-reviewed medical reference.`,
		refText)
	return &Consultation{
		Status:   "success",
		Guidance: guidance,
		Sources:  []string{SourceReference},
		SourceDetails: map[string]string{
			"reference_materials": "Comprehensive Clinical Nephrology (peer-reviewed textbook)",
		},
		Type: TypeReferenceBased,
	}
}
