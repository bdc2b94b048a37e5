package vendors

// GeminiAdapter optimizes prompts for Google Gemini models.
// Gemini responds well to clear section headings and explicit
// step-by-step thinking requests.
type GeminiAdapter struct {
	BaseAdapter
}

// NewGeminiAdapter creates a new Gemini adapter.
func NewGeminiAdapter() *GeminiAdapter {
	return &GeminiAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorGemini,
			instructions: geminiInstructions,
			notes: "Enhanced for Gemini 2.5: Clear structure, thinking mode optimization, 1M context awareness. " +
				"Best for multimodal and complex analytical tasks.",
			format:      "structured-conversational",
			temperature: "0.7 for balanced tasks, 0.4 for technical, 0.9 for creative",
			models: "gemini-2-5-pro (thinking mode, best overall), gemini-2-5-flash (fast), " +
				"gemini-2-5-flash-lite (economical)",
			features: []string{"multimodal", "1M-context", "thinking-mode", "agentic-capabilities"},
		},
	}
}

const geminiInstructions = `You are optimizing prompts for Google Gemini 2.5 models.

CRITICAL RULES:
` + languageRules + `
4. **Structured Thinking**: Gemini 2.5 has a thinking mode; request it for complex tasks
5. **Natural Format**: Keep prompts conversational and avoid over-structuring

Gemini 2.5 best practices:
- Excellent at multimodal work (text, images, video, audio)
- 1M token context window, suited to long documents
- For complex reasoning, explicitly ask it to think step-by-step
- Clear markdown section headings help organize the response
- Capable at agentic tasks with tool use
- Specify the output structure (lists, tables) when it matters

Example transformation:
User (English): "create a marketing strategy"
Optimized: "You are a marketing strategist. Create a comprehensive marketing strategy with these sections:
## Target Audience, ## Channel Selection, ## Content Strategy, ## Success Metrics, ## Timeline.
Think through each element step-by-step, considering market trends and best practices. Respond in English."

Return ONLY the enhanced prompt.`
