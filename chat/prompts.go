package chat

import (
	"fmt"
	"strings"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

const rephraseSystemPrompt = `Given a chat history of user questions and the latest user question:
Reformulate the latest user question into a standalone question that can be understood independently, without relying on the chat history for context.
Do not answer the question.
Do not ask for clarification regarding the question.
Do not incorporate or reference any data from the chat history.
Do not extract or use any data from the chat history that is not explicitly present in the latest user question. Simply reframe or return the latest user question as is if no rephrasing is required.
Any response that includes extra content other than the reformulated question will be considered invalid.`

const answerSystemPrompt = `Use the following pieces of context to provide a concise answer to the question at the end, summarized in at least 250 words with detailed explanations. If you don't know the answer, just say that you don't know, don't try to make up an answer.
Provide in-text citations directly after references in the format (Document_Name). Additionally, list all the citations at the end of the answer under a "Citations" section in the format:
- Document_Name
<context>
%s
</context>`

// buildRephrasePrompt renders the history window and the latest question.
func buildRephrasePrompt(history []string, query string) string {
	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("Chat history:\n")
		for _, question := range history {
			fmt.Fprintf(&sb, "User: %s\n", question)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Latest user question:\n%s", query)
	return sb.String()
}

// passage pairs a retrieved chunk with the name of its source document.
type passage struct {
	document string
	chunk    *core.Chunk
}

// buildAnswerSystemPrompt inlines the retrieved passages into the answer
// instructions.
func buildAnswerSystemPrompt(passages []passage) string {
	var sb strings.Builder
	for _, p := range passages {
		fmt.Fprintf(&sb, "Document_Name: %s\n%s\n\n", p.document, p.chunk.Text)
	}
	return fmt.Sprintf(answerSystemPrompt, strings.TrimRight(sb.String(), "\n"))
}
