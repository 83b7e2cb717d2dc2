package rag

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/llm"
)

const answerInstruction = `You answer questions about the documents the user has uploaded.
Use only the context below. If the answer is not in the context, say that you do not have that
information and suggest rephrasing the question or checking the original documents.
When you use a piece of context, mention the document and page it came from.`

const summaryInstruction = `You read the beginning of a document and extract:
1. its title
2. a concise summary of its content in at most 100 words
Reply with the title and the summary separated by one blank line, and nothing else.`

const SummaryUnavailable = "Summary unavailable."

func buildAnswerPrompt(question string, hits []commonModels.SearchHit, history []commonModels.Turn) llm.Prompt {
	var b strings.Builder

	b.WriteString("Conversation history:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, turn := range history {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
	}

	b.WriteString("\nContext:\n")
	for i, hit := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s, page %d]\n%s\n", hit.Chunk.DocId, hit.Chunk.PageNum, hit.Chunk.Chunk)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:", question)
	return llm.Prompt{System: answerInstruction, User: b.String()}
}

func buildSummaryPrompt(preview string) llm.Prompt {
	return llm.Prompt{
		System: summaryInstruction,
		User:   "Document text:\n" + preview,
	}
}

// parseSummary splits a "title\n\nsummary" reply. Missing parts fall back to the file stem and
// SummaryUnavailable.
func parseSummary(reply string, docName string) (title string, summary string) {
	parts := strings.SplitN(strings.TrimSpace(reply), "\n\n", 2)
	title = cleanLabel(parts[0], "title:")
	summary = SummaryUnavailable
	if len(parts) == 2 {
		if s := cleanLabel(parts[1], "summary:"); s != "" {
			summary = s
		}
	}
	if title == "" {
		title = strings.TrimSuffix(docName, filepath.Ext(docName))
	}
	return title, summary
}

func cleanLabel(s string, label string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		s = strings.TrimSpace(s[len(label):])
	}
	return strings.Trim(s, `"*# `)
}

// citationsFrom keeps one citation per (document, page), in retrieval order.
func citationsFrom(hits []commonModels.SearchHit) []commonModels.Citation {
	out := make([]commonModels.Citation, 0, len(hits))
	seen := make(map[commonModels.Citation]struct{}, len(hits))
	for _, hit := range hits {
		c := commonModels.Citation{DocId: hit.Chunk.DocId, PageNum: hit.Chunk.PageNum}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
