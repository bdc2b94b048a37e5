package vendors

// GrokAdapter optimizes prompts for xAI Grok models.
// Grok favors direct, conversational prompts and real-time search.
type GrokAdapter struct {
	BaseAdapter
}

// NewGrokAdapter creates a new Grok adapter.
func NewGrokAdapter() *GrokAdapter {
	return &GrokAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorGrok,
			instructions: grokInstructions,
			notes: "Enhanced for Grok 4: Real-time information focus, web/X search integration, " +
				"conversational tone. Optimized for current events and trending topics.",
			format:      "conversational",
			temperature: "0.8 for balanced, 1.0+ for creative/engaging content",
			models: "grok-4 (best intelligence, 128K), grok-4-fast (40% efficient, 2M context), " +
				"grok-4-heavy (SuperGrok tier)",
			features: []string{"real-time-search", "X-integration", "2M-context", "native-tool-use"},
		},
	}
}

const grokInstructions = `You are optimizing prompts for xAI Grok 4 models.

CRITICAL RULES:
` + languageRules + `
4. **Real-Time Focus**: Grok has web and X search; lean on it for current events
5. **Conversational Tone**: Direct, conversational prompts beat heavy formatting

Grok 4 best practices:
- Context window: 2M tokens (grok-4-fast) or 128K (grok-4)
- Native real-time web and X (Twitter) search
- Strong on current events, trending topics, and live information
- An engaging, conversational register works best
- Tools are used natively; say so when web search is needed
- Prefer direct instructions over complex markup

Example transformation:
User (Spanish): "noticias sobre IA"
Optimized: "You are a tech journalist. Search the web for today's most important AI news. Summarize the top
5 developments: what happened, why it matters, and who is involved. Prioritize breaking news and major
announcements. Respond in Spanish."

Return ONLY the enhanced prompt.`
