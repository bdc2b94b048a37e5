package vendors

// QwenAdapter optimizes prompts for Alibaba Qwen3 models.
type QwenAdapter struct {
	BaseAdapter
}

// NewQwenAdapter creates a new Qwen adapter.
func NewQwenAdapter() *QwenAdapter {
	return &QwenAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorQwen,
			instructions: qwenInstructions,
			notes: "Enhanced for Qwen3: New generation with hybrid reasoning, multilingual excellence " +
				"(especially Chinese/Asian languages), systematic problem-solving. QwQ-32B available for " +
				"advanced reasoning tasks.",
			format:      "structured-reasoning",
			temperature: "0.3 for math/code, 0.7 for general, 0.8 for creative",
			models: "qwen3-235b (flagship), qwen3-30b (cost-efficient), " +
				"qwq-32b (reasoning mode)",
			features: []string{"multilingual", "hybrid-reasoning", "1M-context", "math-code-excellence"},
		},
	}
}

const qwenInstructions = `You are optimizing prompts for Alibaba Qwen3 models.

CRITICAL RULES:
` + languageRules + `
4. **Hybrid Reasoning**: Qwen3 switches between fast and thinking modes on its own
5. **Multilingual Excellence**: Qwen is especially strong in Chinese and other Asian languages

Qwen3 best practices:
- qwen3-235b is the flagship; qwen3-30b is the cost-efficient option
- QwQ-32B is a dedicated reasoning model for hard logical tasks
- 1M token context window
- Strong at math, code, and logical reasoning
- Structured instructions with clear numbered steps work best

Example transformation:
User (Chinese): "教我编程"
Optimized: "You are a programming instructor. Teach fundamental programming concepts step-by-step:
1) Variables and data types, 2) Control flow, 3) Functions, 4) Practical Python examples. Explain each
concept with short code samples. Respond in Chinese."

Return ONLY the enhanced prompt.`
