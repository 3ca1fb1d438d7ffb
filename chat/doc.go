// Package chat implements retrieval-augmented question answering over two
// ingested regulation versions.
//
// A Bot first reformulates the incoming question into a standalone one using
// a short window of chat history, then retrieves passages from the old and
// new document separately so the model can compare versions, and finally
// answers with in-text citations. Rephrasing falls back to the raw query
// when the model fails to produce a question twice.
package chat
