package question

// Format identifies the requested question shape for a slot.
type Format string

const (
	FormatObjective Format = "objective"
	FormatFreeText  Format = "free_text"
)

// Difficulty constants for readability.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// OptionCount is the fixed number of choices an objective question carries.
const OptionCount = 4

// Candidate is the unvalidated output of one generation+parse cycle.
// For objective questions Options holds exactly OptionCount entries and
// Answer equals one of them; for free-text questions Options is nil and
// Answer is the reference answer text (possibly empty).
type Candidate struct {
	Stem      string   `json:"stem"`
	Objective bool     `json:"objective"`
	Options   []string `json:"options,omitempty"`
	Answer    string   `json:"answer"`
}

// Verdict combines both quality-gate results for a candidate. It is
// attached to a candidate for logging and never persisted standalone.
type Verdict struct {
	SemanticPass      bool
	SemanticRationale string
	ClassifierScore   int
}

// Accepted reports whether the candidate passed both gates.
func (v Verdict) Accepted() bool {
	return v.SemanticPass && v.ClassifierScore == 1
}

// Request describes one question slot to fill.
type Request struct {
	Topic      string
	Category   string
	Difficulty string
	Format     Format
}
