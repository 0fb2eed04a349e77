package llm

import (
	"strings"
	"testing"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
)

func scored(texts ...string) []commonModels.ScoredChunk {
	out := make([]commonModels.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = commonModels.ScoredChunk{Chunk: commonModels.Chunk{Index: i, Text: t}, Score: float32(len(texts) - i)}
	}
	return out
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  What was the total revenue in 2023? ", scored("second best", "best"))

	if !strings.HasPrefix(prompt, GroundingInstruction) {
		t.Error("prompt must open with the grounding instruction")
	}
	if !strings.Contains(prompt, "second best\n\nbest") {
		t.Errorf("context chunks not joined in retrieved order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: What was the total revenue in 2023?\n") {
		t.Errorf("question missing or untrimmed:\n%s", prompt)
	}
	if strings.Index(prompt, "best") > strings.Index(prompt, "Question:") {
		t.Error("context must come before the question")
	}
}

func TestBuildPrompt_IsPure(t *testing.T) {
	chunks := scored("a", "b")
	if BuildPrompt("q", chunks) != BuildPrompt("q", chunks) {
		t.Error("BuildPrompt is not deterministic")
	}
	if chunks[0].Chunk.Text != "a" || chunks[1].Chunk.Text != "b" {
		t.Error("BuildPrompt modified its input")
	}
}
