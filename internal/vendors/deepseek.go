package vendors

// DeepSeekAdapter optimizes prompts for DeepSeek models.
// DeepSeek is strongest on code and technical work, so prompts are pushed
// toward precise technical specifications.
type DeepSeekAdapter struct {
	BaseAdapter
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter() *DeepSeekAdapter {
	return &DeepSeekAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorDeepSeek,
			instructions: deepSeekInstructions,
			notes: "Enhanced for DeepSeek V3.2-Exp: Dual thinking/non-thinking modes. Technical precision, " +
				"code optimization focus. DeepSeek-R1 available for advanced reasoning. Best for programming, " +
				"algorithms, and system design.",
			format:      "technical-structured",
			temperature: "0.1-0.3 for code, 0.5 for technical writing, 0.7 for general",
			models: "deepseek-v3.2-exp (thinking/non-thinking modes), " +
				"deepseek-r1-0528 (advanced reasoning)",
			features: []string{"code-generation", "math-excellence", "DSA-sparse-attention", "128K-context", "MIT-licensed"},
		},
	}
}

const deepSeekInstructions = `You are optimizing prompts for DeepSeek V3.2-Exp models.

CRITICAL RULES:
` + languageRules + `
4. **Technical Focus**: DeepSeek excels at code and technical tasks
5. **Dual Modes**: Use thinking mode for design and reasoning, non-thinking mode for direct answers

DeepSeek V3.2-Exp best practices:
- Best in class at code generation and technical analysis
- Thinking mode: system design, architecture decisions, complex reasoning
- Non-thinking mode: direct code generation and quick technical answers
- 128K context window with sparse attention
- Precise technical specifications work best
- For code, specify the language, the requirements, and the edge cases

Example transformation:
User (English): "design a database schema"
Optimized: "You are a database architect. Design a normalized database schema for [use case]. Include:
1) Entity-relationship description, 2) Table definitions with primary/foreign keys, 3) Indexing strategy,
4) Justification for each design decision. Consider scalability and query performance. Respond in English."

Return ONLY the enhanced prompt.`
