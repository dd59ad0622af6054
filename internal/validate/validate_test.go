package validate

import (
	"strings"
	"testing"
)

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"MCQ", MCQ, true},
		{"mcq", MCQ, true},
		{" Nmcq ", NMCQ, true},
		{"summary", Summary, true},
		{"SUMMARY", Summary, true},
		{"FLASHCARD", "FLASHCARD", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseContentType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseContentType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestContentEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		ok, errs := Content(text, MCQ)
		if ok {
			t.Errorf("Content(%q) accepted empty input", text)
		}
		if len(errs) != 1 || errs[0].Message != "Empty content" || errs[0].Section != "Content" {
			t.Errorf("Content(%q) errors = %v", text, errs)
		}
	}
}

func TestContentUnknownType(t *testing.T) {
	ok, errs := Content("anything", ContentType("FLASHCARD"))
	if ok {
		t.Fatal("accepted unknown content type")
	}
	if len(errs) != 1 || errs[0].Section != "Structure" || !strings.Contains(errs[0].Message, "Invalid content type: FLASHCARD") {
		t.Errorf("errors = %v", errs)
	}
}

func TestContentIdempotent(t *testing.T) {
	// Same input, same verdict and same errors, every time.
	doc := "Question 1\nstem\nA) a\nB) b\nC) c\nD) d\n"
	ok1, errs1 := Content(doc, MCQ)
	ok2, errs2 := Content(doc, MCQ)
	if ok1 != ok2 || len(errs1) != len(errs2) {
		t.Fatalf("verdicts differ: (%v, %d errs) vs (%v, %d errs)", ok1, len(errs1), ok2, len(errs2))
	}
	for i := range errs1 {
		if errs1[i].Message != errs2[i].Message || errs1[i].Section != errs2[i].Section {
			t.Errorf("error %d differs: %v vs %v", i, errs1[i], errs2[i])
		}
	}
}

const mcqBlock = `Question 1 - Endocrinology

A 34-year-old woman presents with heat intolerance, palpitations, and weight loss.

A) Graves disease
B) Hashimoto thyroiditis
C) Toxic adenoma
D) Subacute thyroiditis

Correct Answer: A

Explanation:
Diffuse goiter with ophthalmopathy points to Graves disease.

Analysis of Other Options:
B) Hashimoto causes hypothyroidism.
C) Toxic adenoma lacks eye findings.
D) Subacute thyroiditis is painful.

Key Insights:
Ophthalmopathy is specific to Graves disease.
`

func TestMCQValid(t *testing.T) {
	ok, errs := Content(mcqBlock, MCQ)
	if !ok {
		t.Fatalf("valid document rejected: %v", errs)
	}
	if len(errs) != 0 {
		t.Errorf("errors = %v", errs)
	}
}

func TestMCQAnswerNotInOptions(t *testing.T) {
	doc := strings.Replace(mcqBlock, "Correct Answer: A", "Correct Answer: E", 1)
	ok, errs := Content(doc, MCQ)
	if ok {
		t.Fatal("accepted answer letter outside the option set")
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if errs[0].Section != "Answer" || !strings.Contains(errs[0].Message, "not in options") {
		t.Errorf("error = %v", errs[0])
	}
}

func TestMCQFirstBlockNotATitle(t *testing.T) {
	ok, errs := Content("This is just prose, no question anywhere.\nMore prose.", MCQ)
	if ok {
		t.Fatal("accepted document without a question title")
	}
	if len(errs) != 1 || errs[0].Section != "Format" {
		t.Fatalf("errors = %v", errs)
	}
	if !strings.Contains(errs[0].Message, "must start with a question title") {
		t.Errorf("error = %v", errs[0])
	}
	if errs[0].Line == nil || *errs[0].Line != 1 {
		t.Errorf("line = %v, want 1", errs[0].Line)
	}
}

func TestMCQOptionCounts(t *testing.T) {
	tests := []struct {
		name    string
		options string
		ok      bool
	}{
		{"four options", "A) a\nB) b\nC) c\nD) d", true},
		{"five options", "A) a\nB) b\nC) c\nD) d\nE) e", true},
		{"three options", "A) a\nB) b\nC) c", false},
		{"six options stop at E", "A) a\nB) b\nC) c\nD) d\nE) e\nF) f", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "Question 1\n\nA stem line.\n\n" + tt.options + "\n\nCorrect Answer: A\n\nExplanation:\nBecause.\n\nAnalysis of Other Options:\nOthers wrong.\n\nKey Insights:\nRemember this fact.\n"
			ok, errs := Content(doc, MCQ)
			if ok != tt.ok {
				t.Errorf("ok = %v, want %v (errs %v)", ok, tt.ok, errs)
			}
		})
	}
}

func TestMCQOptionsOutOfSequence(t *testing.T) {
	doc := "Question 1\n\nA stem line.\n\nA) a\nC) c\nB) b\nD) d\n\nCorrect Answer: A\n\nExplanation:\nBecause.\n\nAnalysis of Other Options:\nOthers wrong.\n\nKey Insights:\nRemember this fact.\n"
	ok, errs := Content(doc, MCQ)
	if ok {
		t.Fatal("accepted out-of-sequence options")
	}
	found := false
	for _, e := range errs {
		if e.Section == "Options" && strings.Contains(e.Message, "not in sequence") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want an out-of-sequence Options error", errs)
	}
}

func TestMCQMultipleQuestionsReportPerOrdinal(t *testing.T) {
	second := strings.Replace(mcqBlock, "Question 1", "Question 2", 1)
	second = strings.Replace(second, "Correct Answer: A\n\n", "", 1)
	doc := mcqBlock + "\n" + second

	ok, errs := Content(doc, MCQ)
	if ok {
		t.Fatal("accepted document with a defective second question")
	}
	for _, e := range errs {
		if !strings.Contains(e.Message, "Question 2:") {
			t.Errorf("error blames the wrong question: %v", e)
		}
	}
	if len(errs) == 0 {
		t.Fatal("no errors reported")
	}
}

func TestMCQEmDashTitle(t *testing.T) {
	doc := strings.Replace(mcqBlock, "Question 1 - Endocrinology", "Question 1 — Endocrinology", 1)
	if ok, errs := Content(doc, MCQ); !ok {
		t.Errorf("em-dash title rejected: %v", errs)
	}
}

const nmcqBlock = `Clinical Vignette 1: Chest Pain in the Emergency Department

A 62-year-old man arrives with 40 minutes of substernal chest pressure.

Questions and Answers:

1. True/False: An ECG should be obtained within 10 minutes of arrival.
Answer: True
Explanation: Door-to-ECG within 10 minutes is the standard for suspected ACS.

2. Yes/No: Is sublingual nitroglycerin contraindicated after sildenafil use?
Answer: Yes
Explanation: Combined use risks refractory hypotension.

3. Drop Down Question: Which initial biomarker is preferred?
Options: high-sensitivity troponin, CK-MB, myoglobin
Answer: high-sensitivity troponin
Explanation: High-sensitivity troponin is the most sensitive early marker.
`

func TestNMCQValid(t *testing.T) {
	ok, errs := Content(nmcqBlock, NMCQ)
	if !ok {
		t.Fatalf("valid document rejected: %v", errs)
	}
}

func TestNMCQTrueFalseAnswerValue(t *testing.T) {
	doc := strings.Replace(nmcqBlock, "Answer: True", "Answer: Maybe", 1)
	ok, errs := Content(doc, NMCQ)
	if ok {
		t.Fatal("accepted 'Maybe' for a True/False question")
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if errs[0].Section != "Answer" || !strings.Contains(errs[0].Message, "must be 'True' or 'False'") {
		t.Errorf("error = %v", errs[0])
	}
}

func TestNMCQTrueFalseCaseSensitive(t *testing.T) {
	doc := strings.Replace(nmcqBlock, "Answer: True", "Answer: true", 1)
	if ok, _ := Content(doc, NMCQ); ok {
		t.Error("lowercase 'true' must be rejected")
	}
}

func TestNMCQNumberingMismatch(t *testing.T) {
	doc := strings.Replace(nmcqBlock, "2. Yes/No:", "5. Yes/No:", 1)
	ok, errs := Content(doc, NMCQ)
	if ok {
		t.Fatal("accepted misnumbered sub-question")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "numbering error: expected 2, got 5") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want a numbering error", errs)
	}
	// Parsing continues past the mismatch: question 3 must still be clean.
	for _, e := range errs {
		if strings.Contains(e.Message, "Question 3") {
			t.Errorf("later question wrongly flagged: %v", e)
		}
	}
}

func TestNMCQDropDownNeedsTwoOptions(t *testing.T) {
	doc := strings.Replace(nmcqBlock,
		"Options: high-sensitivity troponin, CK-MB, myoglobin",
		"Options: high-sensitivity troponin", 1)
	ok, errs := Content(doc, NMCQ)
	if ok {
		t.Fatal("accepted drop-down with one option")
	}
	found := false
	for _, e := range errs {
		if e.Section == "Options" && strings.Contains(e.Message, "at least 2 options") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v", errs)
	}
}

func TestNMCQDropDownOptionsOnePerLine(t *testing.T) {
	doc := strings.Replace(nmcqBlock,
		"Options: high-sensitivity troponin, CK-MB, myoglobin",
		"high-sensitivity troponin\nCK-MB\nmyoglobin", 1)
	if ok, errs := Content(doc, NMCQ); !ok {
		t.Errorf("one-option-per-line layout rejected: %v", errs)
	}
}

func TestNMCQNoQuestions(t *testing.T) {
	doc := "Clinical Vignette 1: A Title\n\nSome body text here.\n"
	ok, errs := Content(doc, NMCQ)
	if ok {
		t.Fatal("accepted vignette without sub-questions")
	}
	found := false
	for _, e := range errs {
		if e.Section == "Questions" && strings.Contains(e.Message, "No questions found") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v", errs)
	}
}

const summaryBlock = `1. Thyroid Storm

High Yield Points:
- Fever, tachycardia, and altered mentation in a thyrotoxic patient.
- Precipitated by infection, surgery, or iodine load.

Key Insights: Treat with beta blockade before thionamides take effect.

2. Myxedema Coma

High Yield Points:
- Hypothermia and bradycardia in profound hypothyroidism.

Key Insights: Give IV levothyroxine and stress-dose steroids together.
`

func TestSummaryValid(t *testing.T) {
	ok, errs := Content(summaryBlock, Summary)
	if !ok {
		t.Fatalf("valid document rejected: %v", errs)
	}
}

func TestSummaryShortKeyInsights(t *testing.T) {
	doc := strings.Replace(summaryBlock,
		"Key Insights: Treat with beta blockade before thionamides take effect.",
		"Key Insights: Too short.", 1)
	doc = strings.Replace(doc,
		"Key Insights: Give IV levothyroxine and stress-dose steroids together.",
		"Key Insights: Also tiny.", 1)

	ok, errs := Content(doc, Summary)
	if ok {
		t.Fatal("accepted near-empty Key Insights payloads")
	}
	count := 0
	for _, e := range errs {
		if e.Section == "Key Insights" && strings.Contains(e.Message, "too short") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("short-payload errors = %d, want one per block (errs %v)", count, errs)
	}
}

func TestSummaryPhrasesWithoutNumberedBlocks(t *testing.T) {
	// The loose grammar accepts prose carrying both phrases even without
	// numbered blocks.
	doc := "Overview of high yield material.\nKey insight: always reassess the airway before transport decisions.\n"
	if ok, errs := Content(doc, Summary); !ok {
		t.Errorf("lenient acceptance failed: %v", errs)
	}
}

func TestSummaryMissingPhrases(t *testing.T) {
	ok, errs := Content("Just some notes about the kidney.", Summary)
	if ok {
		t.Fatal("accepted document without required phrases")
	}
	sections := map[string]bool{}
	for _, e := range errs {
		sections[e.Section] = true
		if e.Line == nil || *e.Line != 0 {
			t.Errorf("structure error line = %v, want 0", e.Line)
		}
	}
	if !sections["Structure"] {
		t.Errorf("errors = %v, want Structure-level errors", errs)
	}
}

func TestSummaryBlockMissingHighYield(t *testing.T) {
	doc := "1. Topic One\n\nKey Insights: A sufficiently long insight sentence for the check.\n\n2. Topic Two\n\nHigh Yield Points:\n- A point.\n\nKey Insights: Another sufficiently long insight sentence here.\n"
	ok, errs := Content(doc, Summary)
	if ok {
		t.Fatal("accepted block without High Yield Points")
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if errs[0].Section != "High Yield Points" || !strings.Contains(errs[0].Message, "Summary Block 1") {
		t.Errorf("error = %v", errs[0])
	}
}
