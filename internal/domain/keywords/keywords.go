// Package keywords holds the structured output of keyword extraction.
package keywords

// Keywords is the normalized search phrase plus temporal and version facets
// extracted from a free-text question.
type Keywords struct {
	Phrase            string   `json:"phrase"`
	PrimaryVersions   []string `json:"primaryVersions"`
	SecondaryVersions []string `json:"secondaryVersions"`
	Years             []string `json:"years"`
	Issues            []string `json:"issues"`
}

// Fallback returns the degraded extraction result: the question itself as the
// phrase and no facets. Used whenever the generation call is unusable.
func Fallback(question string) Keywords {
	return Keywords{
		Phrase:            question,
		PrimaryVersions:   []string{},
		SecondaryVersions: []string{},
		Years:             []string{},
		Issues:            []string{},
	}
}
