package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Reference answers clinical questions from curated reference material.
type Reference interface {
	Query(ctx context.Context, question string) (string, error)
}

const referencePrompt = `You are an expert clinical nephrologist assistant trained on 'Comprehensive Clinical Nephrology'.
Use the provided medical context to answer clinical questions accurately and professionally.
Always provide evidence-based recommendations and mention when you're uncertain.

Medical Context:
%s

Clinical Question:
%s

Clinical Response (provide detailed, evidence-based medical guidance):
`

// passages is the embedded excerpt corpus the retriever ranks against. A
// production deployment would load a full chapter index from disk instead.
var passages = []string{
	"Chronic kidney disease (CKD) is staged by estimated glomerular filtration rate. Stage 3 (eGFR 30-59 mL/min/1.73m2) warrants blood pressure control below 130/80 mmHg, dietary sodium restriction to 2 g/day, and avoidance of nephrotoxic agents such as NSAIDs. ACE inhibitors or ARBs slow progression in proteinuric patients.",
	"Loop diuretics such as furosemide remain effective at reduced glomerular filtration rates and are first-line for volume overload in CKD. Monitor electrolytes, particularly potassium and magnesium, and watch for ototoxicity at high intravenous doses.",
	"Diabetic nephropathy is the leading cause of end-stage renal disease. Management targets glycemic control (HbA1c near 7%), renin-angiotensin system blockade, and, in recent practice, SGLT2 inhibition for patients with preserved eGFR. Albuminuria is the earliest clinical marker.",
	"Nephrotic syndrome presents with proteinuria above 3.5 g/day, hypoalbuminemia, edema and hyperlipidemia. Periorbital swelling is characteristic. Treatment addresses the underlying glomerular lesion and includes RAAS blockade, diuretics for edema, and thromboprophylaxis in severe hypoalbuminemia.",
	"Hemodialysis and peritoneal dialysis offer comparable survival for most patients with end-stage renal disease. Dialysis initiation is indicated for refractory hyperkalemia, acidosis, volume overload, uremic pericarditis or encephalopathy. Vascular access should be planned when eGFR falls below 20.",
	"Kidney transplantation provides superior survival and quality of life compared with long-term dialysis. Recipients require lifelong immunosuppression, typically tacrolimus, mycophenolate and corticosteroids, with surveillance for rejection, infection and malignancy.",
	"Hypertension in kidney disease is both cause and consequence. Sodium restriction, weight management and combination pharmacotherapy are usually required. Resistant hypertension should prompt evaluation for renal artery stenosis and primary aldosteronism.",
	"Uremic symptoms include fatigue, pruritus, anorexia, nausea, restless legs and sleep disturbance. Pruritus and sleep disruption affect a majority of advanced CKD patients; management includes optimizing dialysis adequacy, phosphate control and topical emollients.",
	"Medication dosing in renal impairment requires adjustment for drugs cleared by the kidney. Metformin is contraindicated below eGFR 30. Gadolinium contrast risks nephrogenic systemic fibrosis in advanced CKD. Always reconcile the medication list at discharge.",
	"Post-discharge care after a nephrology admission centers on medication adherence, daily weight monitoring, blood pressure logs and early recognition of warning signs: worsening edema, shortness of breath, decreased urine output or confusion warrant prompt review.",
}

// OpenAIReference retrieves the most relevant excerpts by embedding
// similarity and asks a chat model to answer from that context.
type OpenAIReference struct {
	client *openai.Client
	model  string
	topK   int

	embedOnce sync.Once
	embedErr  error
	vectors   [][]float32
}

// NewOpenAIReference constructs the reference client. Model defaults to
// gpt-4o-mini when empty.
func NewOpenAIReference(apiKey, model string) *OpenAIReference {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIReference{
		client: openai.NewClient(apiKey),
		model:  model,
		topK:   4,
	}
}

// Query answers a clinical question grounded on the excerpt corpus.
func (r *OpenAIReference) Query(ctx context.Context, question string) (string, error) {
	if r.client == nil {
		return "", errors.New("openai client not initialized")
	}

	contextText, err := r.retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("retrieve reference context: %w", err)
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(referencePrompt, contextText, question),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// retrieve embeds the question and returns the top-k passages joined as one
// context block. Passage embeddings are computed once and cached.
func (r *OpenAIReference) retrieve(ctx context.Context, question string) (string, error) {
	r.embedOnce.Do(func() {
		resp, err := r.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: passages,
			Model: openai.AdaEmbeddingV2,
		})
		if err != nil {
			r.embedErr = err
			return
		}
		r.vectors = make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			r.vectors[i] = d.Embedding
		}
	})
	if r.embedErr != nil {
		return "", fmt.Errorf("embed passages: %w", r.embedErr)
	}

	resp, err := r.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{question},
		Model: openai.AdaEmbeddingV2,
	})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", errors.New("empty embedding response")
	}
	query := resp.Data[0].Embedding

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(r.vectors))
	for i, v := range r.vectors {
		ranked[i] = scored{idx: i, score: cosine(query, v)}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	k := r.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	selected := make([]string, 0, k)
	for _, s := range ranked[:k] {
		selected = append(selected, passages[s.idx])
	}
	return strings.Join(selected, "\n\n"), nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
