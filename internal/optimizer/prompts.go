package optimizer

import (
	"fmt"
	"strings"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// =============================================================================
// TRANSCRIPT BUILDERS
// =============================================================================

const optimizePrinciples = `Key principles:
- Make prompts clear and unambiguous
- Add necessary context and constraints
- Structure information logically
- Optimize for the target LLM vendor's strengths
- Preserve the user's intent while enhancing effectiveness`

func optimizeMessages(req Request, adapter vendors.Adapter) []external.Message {
	system := "You are an expert prompt engineer. Your task is to improve user prompts for LLM interactions.\n\n" +
		adapter.SystemInstructions() + "\n\n" + optimizePrinciples

	var user strings.Builder
	fmt.Fprintf(&user, "Original prompt to optimize:\n%s\n\nTarget vendor: %s", req.OriginalPrompt, req.TargetVendor)
	if req.Context != "" {
		fmt.Fprintf(&user, "\nAdditional context: %s", req.Context)
	}
	if req.MaxLength > 0 {
		fmt.Fprintf(&user, "\nMax length constraint: %d characters", req.MaxLength)
	}
	fmt.Fprintf(&user, "\n\nProvide an improved version of this prompt optimized for %s.", req.TargetVendor)

	return []external.Message{external.SystemMessage(system), external.UserMessage(user.String())}
}

func questionMessages(prompt string, vendor vendors.Vendor, count int) []external.Message {
	system := fmt.Sprintf(`Generate exactly %[1]d clarifying questions that will help create the perfect optimized prompt.

CRITICAL RULES:
1. Detect the language of the user's prompt
2. Write ALL questions in that SAME language
3. Focus on: knowledge level, goals, preferred format, depth of detail, and context
4. Keep each question short and specific
5. Number the questions 1 to %[1]d
6. Put each question on its own line
7. Output ONLY the numbered questions, with no introduction or closing text

Example for a Russian prompt:
1. Какой у вас уровень знаний в этой теме?
2. Для какой цели вам нужна эта информация?

Example for an English prompt:
1. What is your current knowledge level on this topic?
2. What will you use this information for?`, count)

	user := fmt.Sprintf("User's original prompt: %q\nTarget vendor: %s\n\nGenerate %d essential questions to optimize this prompt perfectly.",
		prompt, vendor, count)

	return []external.Message{external.SystemMessage(system), external.UserMessage(user)}
}

func answersMessages(req AnswersRequest, adapter vendors.Adapter) []external.Message {
	system := "You are an expert prompt engineer. Create the PERFECT optimized prompt using the user's answers to clarifying questions.\n\n" +
		adapter.SystemInstructions() +
		"\n\nUse the Q&A to deeply understand what the user wants and create the single best possible prompt."

	var user strings.Builder
	fmt.Fprintf(&user, "Original prompt: %q\nTarget vendor: %s\n\nClarifying Q&A:\n%s",
		req.OriginalPrompt, req.TargetVendor, qaBlock(req.Questions, req.Answers))
	if req.Context != "" {
		fmt.Fprintf(&user, "\n\nAdditional context: %s", req.Context)
	}
	fmt.Fprintf(&user, "\n\nCreate the PERFECT optimized prompt for %s based on all this information.", req.TargetVendor)

	return []external.Message{external.SystemMessage(system), external.UserMessage(user.String())}
}

// qaBlock renders "Q: <q>\nA: <a>" pairs in order with no blank lines.
// Callers guarantee equal lengths.
func qaBlock(questions, answers []string) string {
	lines := make([]string, 0, 2*len(questions))
	for i, q := range questions {
		lines = append(lines, "Q: "+q, "A: "+answers[i])
	}
	return strings.Join(lines, "\n")
}

func answersNotes(base string, n int) string {
	return fmt.Sprintf("%s Enhanced with %d clarifying questions for precision.", base, n)
}
