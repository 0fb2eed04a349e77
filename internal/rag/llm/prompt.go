package llm

import (
	"strings"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
)

const GroundingInstruction = "Answer the question using only the context below. " +
	"If the context does not contain the answer, say that you don't know; do not make up an answer."

// BuildPrompt assembles the grounded prompt: the instruction, the retrieved
// chunk texts in retrieved order separated by blank lines, then the question.
func BuildPrompt(question string, context []commonModels.ScoredChunk) string {
	var b strings.Builder
	b.WriteString(GroundingInstruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(commonModels.Texts(context), "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\nHelpful Answer:")
	return b.String()
}
