package chunker

import (
	"strings"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
)

// Split slides a window of chunkSize runes over text with a stride of
// chunkSize-overlap, starting at offset 0 and stopping once the window start
// reaches the end of the text. The last chunk may be shorter than chunkSize.
func Split(text string, chunkSize int, overlap int) ([]commonModels.Chunk, error) {
	if err := Validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []commonModels.Chunk{}, nil
	}

	stride := chunkSize - overlap
	chunks := make([]commonModels.Chunk, 0, (n+stride-1)/stride)
	for start := 0; start < n; start += stride {
		end := min(start+chunkSize, n)
		chunks = append(chunks, commonModels.Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
	}
	return chunks, nil
}

func Validate(chunkSize int, overlap int) error {
	if chunkSize <= 0 {
		return ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return nil
}

// Join stitches chunks back into the text they were cut from, dropping the
// part of each chunk already covered by its predecessor.
func Join(chunks []commonModels.Chunk) string {
	var b strings.Builder
	covered := 0
	for _, c := range chunks {
		runes := []rune(c.Text)
		skip := covered - c.Start
		if skip < 0 {
			skip = 0
		}
		if skip < len(runes) {
			b.WriteString(string(runes[skip:]))
		}
		covered = max(covered, c.End)
	}
	return b.String()
}
