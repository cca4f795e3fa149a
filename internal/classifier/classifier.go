// Package classifier decides what kind of message the assistant received.
//
// All keyword lists used by the conversation flow live here so the router,
// the knowledge layer and the transport share one classification instead of
// each keeping its own copy.
package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

// Classification is the result of classifying one inbound message.
type Classification struct {
	// PatientID is the first patient-ID-shaped substring (e.g. NEP0008)
	// found anywhere in the text, or empty.
	PatientID string
	// LooksLikeName is true for 2-3 purely alphabetic tokens, at least one
	// capitalized, with no medical or question keyword.
	LooksLikeName bool
	// IsMedical is true when the text contains a symptom, condition,
	// treatment or medical-history term.
	IsMedical bool
	// NeedsRecency flags queries that ask for recent, historical or
	// time-anchored information and should consult web search.
	NeedsRecency bool
	// IsPatientSpecific is true when the phrasing is about the patient
	// themselves ("should I", "my", ...).
	IsPatientSpecific bool
	// IsGeneralQuestion is true for encyclopedic phrasing ("what is",
	// "who discovered", ...).
	IsGeneralQuestion bool
}

// Kind is the single label obtained by applying the fixed priority order:
// patient ID > name heuristic > medical keywords > general.
type Kind int

const (
	KindGeneral Kind = iota
	KindPatientID
	KindName
	KindMedical
)

// Kind collapses the classification using the priority order above.
func (c Classification) Kind() Kind {
	switch {
	case c.PatientID != "":
		return KindPatientID
	case c.LooksLikeName:
		return KindName
	case c.IsMedical:
		return KindMedical
	default:
		return KindGeneral
	}
}

var patientIDRe = regexp.MustCompile(`\b[A-Z]{3}\d{3,}\b`)

// medicalKeywords covers symptoms, conditions, treatments and medical
// history terms. Matched on word boundaries: substring matching would make
// "is" fire inside surnames like "Harris".
var medicalKeywords = []string{
	// symptoms, with common inflections since matching is word-bounded
	"pain", "pains", "swelling", "worried", "worry", "concerned", "concern",
	"concerns", "hurt", "hurts", "ache", "aches", "aching",
	"problem", "problems", "issue", "issues", "symptom", "symptoms",
	"feel", "feels", "feeling", "sick", "nausea", "vomit",
	"vomiting", "fever", "temperature", "trouble", "difficulty", "blood",
	"urine", "breathing", "chest", "shortness", "dizzy", "tired", "fatigue",
	"itching", "itch", "cramps", "cramping", "headache", "headaches", "help",
	// conditions
	"disease", "condition", "syndrome", "disorder", "infection", "cancer",
	"tumor", "diabetes", "hypertension", "kidney", "heart", "cardiac",
	"arrest", "stroke", "seizure", "dialysis",
	// treatments
	"treatment", "medication", "medicine", "therapy", "surgery", "diagnosis",
	"test", "examination", "procedure", "operation",
	// history and research
	"discovered", "invented", "developed", "research", "study", "clinical",
}

var medicalPhrases = []string{
	"when did", "when was", "history of", "first case",
}

// questionKeywords disqualify a short message from the name heuristic even
// when no medical term is present.
var questionKeywords = []string{
	"what", "how", "why", "when", "where", "who", "should", "can", "is",
	"am", "are", "do", "does", "will",
}

// recencyKeywords flag queries that need current or historical information
// from web search rather than the static reference index.
var recencyKeywords = []string{
	"latest", "recent", "recently", "new", "current", "updated", "today",
	"research", "study", "trial", "published", "findings", "breakthrough",
	"discovery", "history", "origin", "discovered", "invented", "developed",
	"earliest", "timeline", "recorded", "guidelines", "recommendation",
	"approval", "fda", "revised", "amended",
	"2022", "2023", "2024", "2025",
}

var recencyPhrases = []string{
	"when was", "when did", "how recent", "most recent", "last time",
	"this year", "last year", "first case", "who first", "first recorded",
	"history of", "who discovered", "who invented", "who developed",
	"clinical trial", "latest research", "recent studies", "current research",
}

var patientSpecificPhrases = []string{
	"i am", "i'm", "my", "me", "should i", "can i", "what should i do",
	"am i", "do i need", "is my", "are my", "will i", "how do i",
}

var generalQuestionPhrases = []string{
	"what is", "what are", "how does", "when did", "when was", "where",
	"who", "why does", "explain", "define", "history of", "first case",
	"discovery of", "invented", "developed",
}

var (
	medicalRe         = wordAlternation(medicalKeywords)
	questionRe        = wordAlternation(questionKeywords)
	recencyRe         = wordAlternation(recencyKeywords)
	patientSpecificRe = wordAlternation(patientSpecificPhrases)
	generalQuestionRe = wordAlternation(generalQuestionPhrases)
)

func wordAlternation(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func containsPhrase(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func alphabeticToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Classify inspects raw text and returns every signal the conversation flow
// needs. Pure string and regexp matching; no external calls.
func Classify(text string) Classification {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	c := Classification{
		PatientID:         patientIDRe.FindString(trimmed),
		IsMedical:         medicalRe.MatchString(lower) || containsPhrase(lower, medicalPhrases),
		NeedsRecency:      recencyRe.MatchString(lower) || containsPhrase(lower, recencyPhrases),
		IsPatientSpecific: patientSpecificRe.MatchString(lower),
		IsGeneralQuestion: generalQuestionRe.MatchString(lower),
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) >= 2 && len(tokens) <= 3 && !c.IsMedical && !questionRe.MatchString(lower) {
		alphabetic := true
		capitalized := false
		for _, tok := range tokens {
			if !alphabeticToken(tok) {
				alphabetic = false
				break
			}
			if unicode.IsUpper([]rune(tok)[0]) {
				capitalized = true
			}
		}
		// Lowercase chit-chat like "doing great today" is not a name.
		c.LooksLikeName = alphabetic && capitalized
	}

	return c
}
