package interview

import (
	"context"
	"fmt"
	"strings"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
	"interviewsim/pkg/search"
)

const maxSearchContext = 2000

// Researcher fetches company intel via web search and synthesizes it into
// a short summary. The search capability is optional: absence is a
// configuration condition, and any failure degrades to a generic fallback
// without aborting the session.
type Researcher struct {
	llm        agent.LLMClient
	search     search.Client
	maxResults int
	logger     *logx.Logger
}

// NewResearcher creates a researcher. A nil search client disables live
// research and uses fallback intel.
func NewResearcher(llm agent.LLMClient, searchClient search.Client, maxResults int) *Researcher {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Researcher{
		llm:        llm,
		search:     searchClient,
		maxResults: maxResults,
		logger:     logx.NewLogger("researcher"),
	}
}

// Run writes CompanyIntel. Never returns an error: every failure path
// substitutes the fallback summary and continues.
func (r *Researcher) Run(ctx context.Context, s *Session) {
	if r.search == nil {
		r.logger.Debug("Search not configured, using fallback company profile")
		s.CompanyIntel = fallbackIntel(s.CompanyName)
		return
	}

	query := fmt.Sprintf("%s engineering culture interview process", s.CompanyName)
	results, err := r.search.Search(ctx, query, r.maxResults)
	if err != nil || len(results) == 0 {
		r.logger.Warn("Search failed for %q, using fallback: %v", s.CompanyName, err)
		s.CompanyIntel = fallbackIntel(s.CompanyName)
		return
	}

	var parts []string
	for _, result := range results {
		if result.Content != "" {
			parts = append(parts, result.Content)
		}
	}
	context := strings.Join(parts, "\n\n")
	if len(context) > maxSearchContext {
		context = context[:maxSearchContext]
	}

	prompt := fmt.Sprintf(`Summarize key insights about %s in 3-4 sentences:

SEARCH RESULTS:
%s

Focus on:
- Company culture and values
- Interview style (technical vs behavioral focus)
- Recent news or changes
- What they look for in candidates

Be specific and actionable.`, s.CompanyName, context)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(prompt)})
	req.Temperature = agent.TemperatureStrict

	resp, err := r.llm.Complete(ctx, req)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		r.logger.Warn("Intel synthesis failed for %q, using fallback: %v", s.CompanyName, err)
		s.CompanyIntel = fallbackIntel(s.CompanyName)
		return
	}

	s.CompanyIntel = strings.TrimSpace(resp.Content)
	r.logger.Info("Synthesized intel from %d sources on %s", len(results), s.CompanyName)
}

func fallbackIntel(company string) string {
	return fmt.Sprintf("%s values innovation, teamwork, and technical excellence. "+
		"They use a modern tech stack and agile methodologies.", company)
}
