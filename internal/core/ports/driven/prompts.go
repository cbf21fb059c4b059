package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by the trace pipeline.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptThoughtExtraction is the system prompt for splitting content into
	// a numbered list of claims. The user prompt is the content's plain text.
	PromptThoughtExtraction = "thought_extraction"

	// PromptThoughtRanking is the system prompt for scoring claims.
	// The user prompt is the numbered list of claims.
	PromptThoughtRanking = "thought_ranking"

	// PromptClassification is the system prompt for the origin/virality verdict.
	// The user prompt carries the primary claim and its evidence.
	PromptClassification = "classification"
)
