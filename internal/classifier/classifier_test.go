package classifier

import (
	"testing"
)

func TestNameHeuristic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"Sarah Harris", true},
		{"john smith", false},                // no capitalized token
		{"doing great today", false},         // lowercase chit-chat
		{"Maria Elena Garcia", true},
		{"Sarah", false},                     // single token
		{"Sarah Harris NEP0008", false},      // token with digits
		{"I have pain", false},               // medical keyword
		{"what is my name", false},           // question keyword
		{"one two three four", false},        // too many tokens
		{"I feel tired", false},              // medical keyword
		{"Robert Lewis", true},
		{"", false},
	}

	for _, tc := range cases {
		got := Classify(tc.text).LooksLikeName
		if got != tc.want {
			t.Errorf("Classify(%q).LooksLikeName = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestPatientIDWinsOverName(t *testing.T) {
	t.Parallel()

	c := Classify("My id is NEP0042")
	if c.PatientID != "NEP0042" {
		t.Fatalf("expected patient ID NEP0042, got %q", c.PatientID)
	}
	if c.Kind() != KindPatientID {
		t.Errorf("expected KindPatientID, got %v", c.Kind())
	}

	// ID embedded in otherwise name-like text still wins.
	c = Classify("NEP0008")
	if c.Kind() != KindPatientID {
		t.Errorf("bare ID should classify as KindPatientID, got %v", c.Kind())
	}
}

func TestPatientIDPattern(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"NEP0008", "NEP0008"},
		{"my patient id is NEP123456 thanks", "NEP123456"},
		{"nep0008", ""},    // lowercase does not match
		{"NE0008", ""},     // two letters
		{"NEP08", ""},      // too few digits
		{"ABC999", "ABC999"},
	}

	for _, tc := range cases {
		if got := Classify(tc.text).PatientID; got != tc.want {
			t.Errorf("Classify(%q).PatientID = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestMedicalDetection(t *testing.T) {
	t.Parallel()

	medical := []string{
		"I have itching all over my body",
		"my legs are swelling badly",
		"is this medication safe",
		"I feel dizzy and tired",
		"when did the first kidney transplant happen",
	}
	for _, text := range medical {
		if !Classify(text).IsMedical {
			t.Errorf("expected %q to be medical", text)
		}
	}

	if Classify("thanks, all good here").IsMedical {
		t.Error("chit-chat should not classify as medical")
	}
	// Surname containing a short keyword as substring must not fire.
	if Classify("Sarah Harris").IsMedical {
		t.Error("name must not match medical keywords by substring")
	}
}

func TestNeedsRecency(t *testing.T) {
	t.Parallel()

	flagged := []string{
		"what are the latest SGLT2 inhibitor trials",
		"any new guidelines in 2024",
		"history of cardiac arrest",
		"most recent research on dialysis",
	}
	for _, text := range flagged {
		if !Classify(text).NeedsRecency {
			t.Errorf("expected %q to need recency", text)
		}
	}

	if Classify("what is chronic kidney disease").NeedsRecency {
		t.Error("timeless definition question should not need recency")
	}
}

func TestPatientSpecificVsGeneral(t *testing.T) {
	t.Parallel()

	c := Classify("should I stop taking my lisinopril")
	if !c.IsPatientSpecific {
		t.Error("expected patient-specific phrasing to be detected")
	}

	c = Classify("what is diabetic nephropathy")
	if !c.IsGeneralQuestion || c.IsPatientSpecific {
		t.Errorf("expected general question, got specific=%v general=%v",
			c.IsPatientSpecific, c.IsGeneralQuestion)
	}
}

func TestKindPriorityOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want Kind
	}{
		{"NEP0008", KindPatientID},
		{"Sarah Harris", KindName},
		{"I have chest pain", KindMedical},
		{"thanks so much for everything", KindGeneral},
	}

	for _, tc := range cases {
		if got := Classify(tc.text).Kind(); got != tc.want {
			t.Errorf("Classify(%q).Kind() = %v, want %v", tc.text, got, tc.want)
		}
	}
}
