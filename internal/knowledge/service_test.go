package knowledge

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeReference struct {
	response string
	err      error
	lastQ    string
}

func (f *fakeReference) Query(_ context.Context, question string) (string, error) {
	f.lastQ = question
	return f.response, f.err
}

type fakeSearcher struct {
	results []SearchResult
	err     error
	lastQ   string
}

func (f *fakeSearcher) Search(query string) ([]SearchResult, error) {
	f.lastQ = query
	return f.results, f.err
}

func newTestService(ref Reference, search Searcher) *Service {
	return NewService(ref, search, nil, slog.Default())
}

var someResults = []SearchResult{
	{Title: "Recent Trial", Snippet: "New findings.", Source: "PubMed", Date: "2024-01-01"},
}

func TestAnswerBothSourcesAvailable(t *testing.T) {
	t.Parallel()

	svc := newTestService(
		&fakeReference{response: "Established guidance on SGLT2 inhibitors in CKD."},
		&fakeSearcher{results: someResults},
	)

	c := svc.Answer(context.Background(), Query{
		Question:     "what are the latest sglt2 trials",
		NeedsRecency: true,
	})

	if c.Status != "success" || c.Type != TypeComprehensive {
		t.Fatalf("got status %q type %q, want success/comprehensive", c.Status, c.Type)
	}
	if !strings.Contains(c.Guidance, "📚 **REFERENCE MATERIALS**") {
		t.Error("missing reference section header")
	}
	if !strings.Contains(c.Guidance, "🌐 **RECENT MEDICAL LITERATURE**") {
		t.Error("missing literature section header")
	}
	if len(c.Sources) != 2 || c.Sources[0] != SourceReference || c.Sources[1] != SourceWebSearch {
		t.Errorf("sources = %v", c.Sources)
	}
}

func TestAnswerWebFallbackWhenReferenceThin(t *testing.T) {
	t.Parallel()

	// Under 20 characters counts as unusable.
	svc := newTestService(
		&fakeReference{response: "Not certain."},
		&fakeSearcher{results: someResults},
	)

	c := svc.Answer(context.Background(), Query{
		Question:     "latest hypertension guidelines",
		NeedsRecency: true,
	})

	if c.Type != TypeWebFallback {
		t.Fatalf("type = %q, want %q", c.Type, TypeWebFallback)
	}
	if !strings.Contains(c.Guidance, "insufficient information") {
		t.Error("expected note about insufficient reference materials")
	}
	if len(c.Sources) != 1 || c.Sources[0] != SourceWebSearch {
		t.Errorf("sources = %v", c.Sources)
	}
}

func TestAnswerReferenceOnlyWhenSearchFails(t *testing.T) {
	t.Parallel()

	svc := newTestService(
		&fakeReference{response: "Established guidance on blood pressure targets in CKD."},
		&fakeSearcher{err: errors.New("search backend down")},
	)

	c := svc.Answer(context.Background(), Query{
		Question:     "latest blood pressure targets",
		NeedsRecency: true,
	})

	if c.Type != TypeReferenceOnly {
		t.Fatalf("type = %q, want %q", c.Type, TypeReferenceOnly)
	}
	if !strings.Contains(c.Guidance, "literature search was unavailable") {
		t.Error("expected note about unavailable literature search")
	}
}

func TestAnswerApologyWhenNothingAvailable(t *testing.T) {
	t.Parallel()

	svc := newTestService(
		&fakeReference{err: errors.New("no api key")},
		&fakeSearcher{err: errors.New("search backend down")},
	)

	c := svc.Answer(context.Background(), Query{
		Question:     "latest research on dialysis",
		NeedsRecency: true,
	})

	if c.Status != "error" {
		t.Fatalf("status = %q, want error", c.Status)
	}
	if !strings.Contains(c.Guidance, "consult with a healthcare professional") {
		t.Errorf("unexpected apology text: %q", c.Guidance)
	}
	if len(c.Sources) != 0 {
		t.Errorf("sources = %v, want empty", c.Sources)
	}
}

func TestAnswerReferenceBasedDefaultPath(t *testing.T) {
	t.Parallel()

	search := &fakeSearcher{results: someResults}
	svc := newTestService(
		&fakeReference{response: "Swelling in CKD is commonly managed with loop diuretics."},
		search,
	)

	c := svc.Answer(context.Background(), Query{Question: "why are my legs swelling"})

	if c.Type != TypeReferenceBased {
		t.Fatalf("type = %q, want %q", c.Type, TypeReferenceBased)
	}
	if search.lastQ != "" {
		t.Errorf("search ran for a non-recency question: %q", search.lastQ)
	}
	if !strings.Contains(c.Guidance, "📋 **SOURCE:**") {
		t.Error("missing source footer")
	}
}

func TestAnswerAlwaysEndsWithDisclaimer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		ref   *fakeReference
		query Query
	}{
		{
			name:  "reference only",
			ref:   &fakeReference{response: "Loop diuretics remain effective at low eGFR."},
			query: Query{Question: "why are my ankles swelling"},
		},
		{
			name:  "reference plus search",
			ref:   &fakeReference{response: "Established guidance on SGLT2 inhibitors."},
			query: Query{Question: "latest sglt2 trials", NeedsRecency: true},
		},
		{
			name:  "web fallback",
			ref:   &fakeReference{response: "No."},
			query: Query{Question: "latest dialysis research", NeedsRecency: true},
		},
	}

	for _, tc := range cases {
		svc := newTestService(tc.ref, &fakeSearcher{results: someResults})
		c := svc.Answer(context.Background(), tc.query)
		if c.Status != "success" {
			t.Fatalf("%s: status = %q, want success", tc.name, c.Status)
		}
		if !strings.HasSuffix(c.Guidance, "Always consult healthcare professionals for medical advice.") {
			t.Errorf("%s: guidance does not end with the professional disclaimer: %q", tc.name, c.Guidance)
		}
	}
}

func TestAnswerReferenceErrorWithoutSearch(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeReference{err: errors.New("timeout")}, &fakeSearcher{})

	c := svc.Answer(context.Background(), Query{Question: "is my swelling normal"})
	if c.Status != "error" {
		t.Fatalf("status = %q, want error", c.Status)
	}
	if !strings.Contains(c.Guidance, "unable to access medical reference materials") {
		t.Errorf("unexpected apology text: %q", c.Guidance)
	}
}

func TestAnswerUsesPatientContextForReferenceOnly(t *testing.T) {
	t.Parallel()

	ref := &fakeReference{response: "Guidance considering the patient's discharge condition."}
	search := &fakeSearcher{results: someResults}
	svc := newTestService(ref, search)

	enhanced := "Patient Context:\n- Name: Sarah Harris\n\nPatient Question: what are the latest trials for my condition"
	svc.Answer(context.Background(), Query{
		Question:       "what are the latest trials for my condition",
		PatientContext: enhanced,
		NeedsRecency:   true,
	})

	if ref.lastQ != enhanced {
		t.Errorf("reference query = %q, want enhanced context", ref.lastQ)
	}
	if search.lastQ != "what are the latest trials for my condition" {
		t.Errorf("search query = %q, want bare question", search.lastQ)
	}
}

func TestAnswerAppendsDrugInformation(t *testing.T) {
	t.Parallel()

	svc := newTestService(
		&fakeReference{response: "Lisinopril is an ACE inhibitor used for kidney protection."},
		&fakeSearcher{},
	)

	c := svc.Answer(context.Background(), Query{Question: "should I keep taking lisinopril"})
	if !strings.Contains(c.Guidance, "**Drug Information for Lisinopril:**") {
		t.Error("expected drug information appendix for recognized medication")
	}
	if !strings.Contains(c.Guidance, "ACE Inhibitor") {
		t.Error("expected drug class in appendix")
	}
}
