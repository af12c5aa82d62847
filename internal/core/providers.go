package core

import "context"

// LanguageProvider is the external language-understanding collaborator.
// Both operations must honor ctx deadlines; callers treat any error as
// "signal unavailable" and degrade, never as a fatal turn error.
type LanguageProvider interface {
	ExtractSignals(ctx context.Context, text string) (*SignalBundle, error)
	SemanticSimilarity(ctx context.Context, textA, textB string) (float64, error)
}
