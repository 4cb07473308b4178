package ollama

import "github.com/dkotenko/docstore/internal/core/domain"

func buildAnalysisPrompt(text string, docType domain.DocumentType) string {
	const maxSnippet = 4000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are a document analyst. The document is declared as type "` + string(docType) + `".
Return strict JSON object with keys:
category (string), summary (string), entities (array of strings),
key_fields (object of string to string), confidence (number from 0 to 1).
No markdown, no extra keys.

Document:
` + snippet
}
