package search

// Field weights for the searchable document, matching the tsvector
// setweight classes the jobs table trigger assigns: title A,
// description B, requirements C, category text D.
const (
	weightTitle        = 1.0
	weightDescription  = 0.4
	weightRequirements = 0.2
	weightCategory     = 0.1
)

// Document is the precomputed searchable representation of a job
// record: every token mapped to its accumulated field weight. Repeated
// occurrences accumulate, so a term that appears three times in the
// description outranks one that appears once.
type Document struct {
	terms map[string]float64
}

// NewDocument builds the weighted document for one record. categoryText
// is the space-joined category tag list (the category_text column).
func NewDocument(title, description, requirements, categoryText string) Document {
	d := Document{terms: make(map[string]float64)}
	d.add(title, weightTitle)
	d.add(description, weightDescription)
	d.add(requirements, weightRequirements)
	d.add(categoryText, weightCategory)
	return d
}

func (d Document) add(text string, weight float64) {
	for _, tok := range Tokenize(text) {
		d.terms[tok] += weight
	}
}

// Rank returns the full-text relevance of the document for the given
// query tokens: the sum of accumulated weights of every token present.
// Higher is better; zero means no token matched.
func (d Document) Rank(tokens []string) float64 {
	var rank float64
	for _, tok := range tokens {
		rank += d.terms[tok]
	}
	return rank
}

// Matches reports whether every query token appears in the document —
// plainto_tsquery AND semantics. An empty token list never matches.
func (d Document) Matches(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := d.terms[tok]; !ok {
			return false
		}
	}
	return true
}

// Tokenize splits text into lowercase alphanumeric tokens. No stemming:
// ranking stays deterministic and typo tolerance is the trigram
// similarity's job.
func Tokenize(text string) []string {
	return splitWords(text)
}
