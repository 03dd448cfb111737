package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"

	"aide/model"
)

// ConvertToOpenAIMessages converts provider-agnostic messages to the OpenAI
// SDK's union type, preserving role and order.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			result[i] = openai.SystemMessage(msg.Content)
		case "user":
			result[i] = openai.UserMessage(msg.Content)
		case "assistant":
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}

// ConvertToAnthropicMessages converts provider-agnostic messages to
// Anthropic's format. System entries move to the separate system parameter
// (Anthropic keeps them out of the messages array); user and assistant turns
// keep their role and order.
func ConvertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case "assistant":
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return anthropicMsgs, systemBlocks
}
