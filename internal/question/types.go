package question

import "context"

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is a multiple-choice question as stored server-side.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Public is the client view of a question; the answer is withheld.
type Public struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// Public strips the correct answer.
func (q Question) Public() Public {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return Public{ID: q.ID, Prompt: q.Prompt, Options: opts}
}

// Valid reports whether the question is playable.
func (q Question) Valid() bool {
	return q.ID != "" && len(q.Options) == OptionCount && q.CorrectIndex >= 0 && q.CorrectIndex < OptionCount
}

// Source returns question records. Implementations may fail; callers treat
// failures as empty results.
type Source interface {
	// FetchByAffinity returns up to count questions tagged with key.
	FetchByAffinity(ctx context.Context, key string, count int) ([]Question, error)
	// FetchAll returns the unfiltered (bounded) question pool.
	FetchAll(ctx context.Context) ([]Question, error)
}
