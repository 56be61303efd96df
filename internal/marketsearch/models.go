package marketsearch

// NoSummary replaces a provider answer that is missing or empty.
const NoSummary = "No summary available"

// SearchRequest is one search call. Subject is the brand or entity name.
type SearchRequest struct {
	Subject string
	Intent  Intent
}

// Source is one provider result, in provider order.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResult is the normalized provider answer.
type SearchResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type providerRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains"`
	ExcludeDomains    []string `json:"exclude_domains"`
}

type providerResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type providerResponse struct {
	Answer  *string          `json:"answer"`
	Results []providerResult `json:"results"`
}

func (p providerResponse) normalize() *SearchResult {
	out := &SearchResult{
		Answer:  NoSummary,
		Sources: make([]Source, 0, len(p.Results)),
	}
	if p.Answer != nil && *p.Answer != "" {
		out.Answer = *p.Answer
	}
	for _, r := range p.Results {
		out.Sources = append(out.Sources, Source(r))
	}
	return out
}
