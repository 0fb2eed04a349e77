package commonModels

// Chunk is a contiguous window of the concatenated document text.
// Start and End are rune offsets, End exclusive.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// SourceFile is one document handed to a request. Temporary files belong to
// the request and are removed when it ends; the others belong to the caller.
type SourceFile struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Temporary bool   `json:"temporary"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

// Texts returns the chunk texts in retrieved order.
func Texts(chunks []ScoredChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Chunk.Text)
	}
	return out
}
