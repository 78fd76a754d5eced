package chat

import "strings"

// qaSystemPrompt sets the role, behavior and scope of the assistant
const qaSystemPrompt = `You are a senior QA engineer and QA mentor.

You have access to a QA knowledge base that contains:
- Fundamentals of testing (ISTQB oriented)
- Test design techniques (BVA, EP, decision tables, etc.)
- Bug reporting and defect lifecycle
- API testing practices and tools
- Agile testing and QA role in Scrum
- Common QA interview questions and structured answers

Use the provided context from this knowledge base as the primary source of truth.
If the context is not sufficient, you may use your own general knowledge, but
clearly state any assumptions.

Always:
- Use simple, practical language.
- Connect theory with real-world examples.
- For test cases, include steps, data, and expected results.
- For bug reports, include title, steps, expected vs actual, severity, and priority.`

// formatPrompt renders the retrieved context, the prior conversation turns
// and the latest question into one prompt for the model
func formatPrompt(history []Message, contextStr, input string) string {
	var b strings.Builder

	b.WriteString("Use the following QA reference material to answer. ")
	b.WriteString("If there is any conflict, prefer the reference material.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextStr)
	b.WriteString("\n\n")

	for _, m := range history {
		b.WriteString(promptRole(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	b.WriteString("human: ")
	b.WriteString(input)
	b.WriteString("\nai:")
	return b.String()
}

// promptRole maps conversation roles onto the two transcript roles the
// prompt uses; anything that is not a user turn reads as the assistant
func promptRole(role string) string {
	if role == "user" {
		return "human"
	}
	return "ai"
}
