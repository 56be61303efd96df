package marketsearch

import (
	"fmt"
	"strings"
)

// Intent selects the query template for a search.
type Intent string

const (
	IntentMarketAnalysis   Intent = "market_analysis"
	IntentSocialEngagement Intent = "social_engagement"
	IntentNews             Intent = "news"
	IntentGeneral          Intent = "general"
)

// Valid reports whether i is one of the four recognized intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentMarketAnalysis, IntentSocialEngagement, IntentNews, IntentGeneral:
		return true
	}
	return false
}

// IntentOf reads an intent from a decoded JSON value. Anything that is not a
// recognized string, including null, selects IntentGeneral.
func IntentOf(v interface{}) Intent {
	if s, ok := v.(string); ok && Intent(s).Valid() {
		return Intent(s)
	}
	return IntentGeneral
}

// Vocabulary holds the deployment's business terms woven into every query.
type Vocabulary struct {
	Industry string
	Region   string
	Year     string
}

// DefaultVocabulary is the jewelry-in-India deployment.
var DefaultVocabulary = Vocabulary{Industry: "jewelry", Region: "india", Year: "2025"}

// QueryBuilder maps a (subject, intent) pair to a provider search string.
type QueryBuilder struct {
	vocab Vocabulary
}

// NewQueryBuilder fills any blank term of vocab from DefaultVocabulary.
func NewQueryBuilder(vocab Vocabulary) QueryBuilder {
	if vocab.Industry == "" {
		vocab.Industry = DefaultVocabulary.Industry
	}
	if vocab.Region == "" {
		vocab.Region = DefaultVocabulary.Region
	}
	if vocab.Year == "" {
		vocab.Year = DefaultVocabulary.Year
	}
	return QueryBuilder{vocab: vocab}
}

// Build substitutes subject verbatim. Unrecognized intents use the general template.
func (b QueryBuilder) Build(subject string, intent Intent) string {
	v := b.vocab
	switch intent {
	case IntentMarketAnalysis:
		return fmt.Sprintf("%s %s market share analysis competitive position %s", subject, v.Industry, v.Region)
	case IntentSocialEngagement:
		return fmt.Sprintf("%s %s social media engagement instagram facebook campaign", subject, v.Industry)
	case IntentNews:
		return fmt.Sprintf("%s %s latest news updates %s", subject, v.Industry, v.Year)
	default:
		return fmt.Sprintf("%s %s company information", subject, v.Industry)
	}
}

// BuildQuery builds a query with the default vocabulary.
func BuildQuery(subject string, intent Intent) string {
	return NewQueryBuilder(DefaultVocabulary).Build(subject, intent)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
