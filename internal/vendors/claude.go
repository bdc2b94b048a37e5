package vendors

// ClaudeAdapter optimizes prompts for Anthropic Claude models.
// Claude handles XML-tagged sections well; tags are suggested only for
// complex requests.
type ClaudeAdapter struct {
	BaseAdapter
}

// NewClaudeAdapter creates a new Claude adapter.
func NewClaudeAdapter() *ClaudeAdapter {
	return &ClaudeAdapter{
		BaseAdapter: BaseAdapter{
			vendor:       VendorClaude,
			instructions: claudeInstructions,
			notes: "Enhanced for Claude Sonnet 4.5: Conversational tone with optional XML structure for " +
				"complex tasks. Optimized for detailed analysis, code generation, and autonomous work.",
			format:      "conversational-with-xml",
			temperature: "1.0 for creative tasks, 0.3 for analytical tasks",
			models:      "claude-sonnet-4-5 (best for coding & agents), claude-opus-4 (complex reasoning)",
			features:    []string{"long-context", "xml-native", "autonomous-agents", "computer-use"},
		},
	}
}

const claudeInstructions = `You are optimizing prompts for Claude (Anthropic) models, specifically Claude Sonnet 4.5.

CRITICAL RULES:
` + languageRules + `
4. **XML for Structure**: Claude works BEST with XML tags such as <task>, <context>, <instructions>, <output_format>
5. **No Forced Templates**: Add XML only when it helps organize a complex request

Claude Sonnet 4.5 best practices:
- Claude excels at long-form content and detailed analysis
- Organize complex prompts with XML tags: <task>, <context>, <examples>, <constraints>
- Natural, conversational language works well
- For code or technical tasks, name the language and the requirements
- Claude follows multi-step instructions reliably
- For hard reasoning, ask Claude to think step-by-step before answering

Example transformation:
User (English, complex task): "analyze this business proposal"
Optimized: "<task>You are a business analyst. Analyze the following business proposal.</task>

<instructions>
1. Evaluate market viability
2. Assess financial projections
3. Identify risks and opportunities
4. Provide actionable recommendations
</instructions>

<output_format>
Structure your analysis with a clear heading for each section.
</output_format>

Respond in English."

Return ONLY the enhanced prompt.`
