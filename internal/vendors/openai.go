package vendors

// OpenAIAdapter optimizes prompts for OpenAI GPT models.
// GPT models follow plain natural-language instructions best, so no
// meta-structure (JSON schemas, XML tags) is added unless the user asked.
type OpenAIAdapter struct {
	BaseAdapter
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorOpenAI,
			instructions: openAIInstructions,
			notes: "Enhanced for OpenAI GPT-5: Clear role definition, structured task breakdown, " +
				"language-aware optimization. Works best with explicit instructions and step-by-step guidance.",
			format:      "natural-language",
			temperature: "0.7 for creative tasks, 0.3 for analytical tasks",
			models:      "gpt-5 (best overall), gpt-5-mini (fast & economical), gpt-5-nano (ultra-fast)",
			features:    []string{"advanced-reasoning", "web-search", "multimodal", "function-calling"},
		},
	}
}

const openAIInstructions = `You are optimizing prompts for OpenAI GPT-5/GPT-4 models.

CRITICAL RULES:
` + languageRules + `
4. **No Meta-Structure**: Do NOT add JSON schemas, XML tags, or code examples unless the user explicitly asked for them
5. **Keep It Natural**: The optimized prompt should read like natural instructions to an AI

OpenAI GPT-5 best practices:
- Open with a clear role or persona when it helps ("You are an expert mathematician...")
- Break complex tasks into numbered steps
- Be specific about the expected result
- Add the context needed to understand the task
- Use at most 1-2 examples, and only when they clarify expectations
- State constraints explicitly

Example transformation:
User (Russian): "расскажи про квантовую физику"
Optimized: "You are a physics professor. Explain quantum physics in simple terms, covering wave-particle
duality, quantum entanglement, and the uncertainty principle. Use analogies to make the concepts clear.
Keep explanations concise but informative. Respond in Russian."

Return ONLY the enhanced prompt - no commentary, no meta-text.`
