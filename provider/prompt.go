package provider

import (
	"fmt"
	"strings"
	"unicode"

	"aide/model"
)

const defaultInstructions = "You are a helpful assistant."

// contextDirective keeps multi-turn pronoun resolution working even for
// models that are loose about conversation state.
const contextDirective = "IMPORTANT: You are having a conversation. You must maintain context " +
	"between messages. When you see pronouns like 'he', 'she', 'it', 'they', " +
	"refer to the most recently discussed subject."

// flattenedHistoryTurns bounds how much history the single-prompt Gemini path
// folds into the prompt text.
const flattenedHistoryTurns = 10

// BuildSystemPrompt merges the assistant's instructions with its knowledge
// base. Each knowledge item is wrapped in named start/end markers so the
// model can attribute facts to a source document, followed by usage rules
// that bias the model toward the knowledge base and ask it to cite sources.
// An empty knowledge base produces no knowledge section at all.
func BuildSystemPrompt(instructions string, knowledge []model.KnowledgeItem) string {
	if strings.TrimSpace(instructions) == "" {
		instructions = defaultInstructions
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString(contextDirective)
	b.WriteString("\n\n")

	if len(knowledge) > 0 {
		b.WriteString("KNOWLEDGE BASE (YOU MUST USE THIS INFORMATION):\n")
		for _, item := range knowledge {
			fmt.Fprintf(&b, "\n=== START OF DOCUMENT: %s ===\n%s\n=== END OF DOCUMENT: %s ===\n",
				item.Name, item.Content, item.Name)
		}
		b.WriteString("\nKNOWLEDGE BASE USAGE RULES:\n" +
			"1. You MUST check the knowledge base FIRST before answering any question.\n" +
			"2. If the knowledge base contains relevant information, you MUST use it.\n" +
			"3. Only use your general knowledge if the knowledge base does not contain the answer.\n" +
			"4. When using knowledge base information, cite the source document clearly.\n")
	}

	return b.String()
}

// AssembleMessages builds the role-tagged message sequence for the two
// chat-capable providers (OpenAI, Anthropic): one system entry, the full
// conversation history role-preserved in original order, and exactly one
// trailing user entry with the new message.
func AssembleMessages(req model.ChatRequest) []model.Message {
	out := make([]model.Message, 0, len(req.Options.History)+2)
	out = append(out, model.Message{
		Role:    "system",
		Content: BuildSystemPrompt(req.Options.Instructions, req.Options.Knowledge),
	})
	out = append(out, req.Options.History...)
	out = append(out, model.Message{Role: "user", Content: req.Message})
	return out
}

// BuildFlattenedPrompt builds the single-prompt payload for the legacy
// text-completion shape Gemini uses here: the system prompt, at most the
// last 10 history turns flattened into "Role: content" lines, the
// capitalized-word entities extracted from those turns as explicit context,
// and finally the new user message. OpenAI and Anthropic keep structured
// multi-turn history instead; the two strategies are intentionally distinct
// because the target wire formats differ.
func BuildFlattenedPrompt(req model.ChatRequest) string {
	var b strings.Builder
	b.WriteString(BuildSystemPrompt(req.Options.Instructions, req.Options.Knowledge))

	history := req.Options.History
	if len(history) > flattenedHistoryTurns {
		history = history[len(history)-flattenedHistoryTurns:]
	}

	if len(history) > 0 {
		b.WriteString("\nCONVERSATION SO FAR:\n")
		for _, msg := range history {
			name := "User"
			if msg.Role == "assistant" {
				name = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", name, msg.Content)
		}

		if entities := ExtractEntities(history); len(entities) > 0 {
			fmt.Fprintf(&b, "\nCURRENT CONTEXT ENTITIES: %s\n", strings.Join(entities, ", "))
			b.WriteString("Resolve pronouns in the next message against these entities.\n")
		}
	}

	fmt.Fprintf(&b, "\nUser: %s", req.Message)
	return b.String()
}

// ExtractEntities collects capitalized words from the given turns, in first
// appearance order without duplicates. Sentence-leading words count too; the
// crude net is acceptable because the list only primes pronoun resolution.
func ExtractEntities(history []model.Message) []string {
	var entities []string
	seen := make(map[string]bool)

	for _, msg := range history {
		for _, word := range strings.FieldsFunc(msg.Content, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '-' && r != '\''
		}) {
			if len(word) < 2 {
				continue
			}
			runes := []rune(word)
			if !unicode.IsUpper(runes[0]) {
				continue
			}
			if seen[word] {
				continue
			}
			seen[word] = true
			entities = append(entities, word)
		}
	}

	return entities
}

// ValidateRequest performs the local pre-dispatch checks: configuration
// errors are detected here, before any network call.
func ValidateRequest(req model.ChatRequest, creds model.Credentials) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("message is empty")
	}
	if creds.APIKey == "" {
		return fmt.Errorf("API key is missing")
	}
	return nil
}
