package predict

import (
	"strings"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/signature"
)

// Output field names used by the action-decision signature.
const (
	FieldNextThought  = "next_thought"
	FieldNextToolName = "next_tool_name"
	FieldNextToolArgs = "next_tool_args"
)

// ChainOfThoughtDirective is added to the instructions of chain-of-thought
// predictors.
const ChainOfThoughtDirective = "Think step by step before answering: reason carefully about the inputs, then give the final value of every output field."

const reactSystemPrompt = `You are an agent that solves a task by interleaving reasoning with tool calls.
At every turn you see the task inputs and the trajectory of your previous steps.
Reply with exactly these three lines and nothing else:
next_thought: <your reasoning about the current situation and what to do next>
next_tool_name: <the name of exactly one of the available tools>
next_tool_args: <the tool arguments as a JSON object on a single line>
Call finish with {} once you have enough information to produce the outputs.`

const extractionSystemPrompt = `You produce the requested output fields for a task.
Reply with one line per output field, formatted as "field_name: value", using exactly these field names: `

// SystemPrompt returns the system message for a signature: the agent prompt
// when the signature asks for next_tool_args, the field-extraction prompt
// listing the output names otherwise.
func SystemPrompt(sig *signature.Signature) string {
	if sig.HasOutput(FieldNextToolArgs) {
		return reactSystemPrompt
	}
	return extractionSystemPrompt + strings.Join(sig.OutputNames(), ", ") + "."
}

// FormatUserMessage renders the instructions followed by one "name: value"
// line per declared input, in signature order. Inputs the signature does not
// declare are ignored, as are declared inputs missing from the map.
func FormatUserMessage(sig *signature.Signature, inputs map[string]any) string {
	var parts []string
	if instr := sig.Instructions(); instr != "" {
		parts = append(parts, instr)
	}
	for _, name := range sig.InputNames() {
		v, ok := inputs[name]
		if !ok {
			continue
		}
		parts = append(parts, name+": "+FormatValue(v))
	}
	return strings.Join(parts, "\n")
}

// BuildMessages returns the system and user messages for one call.
func BuildMessages(sig *signature.Signature, inputs map[string]any) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(SystemPrompt(sig)),
		ai.UserMessage(FormatUserMessage(sig, inputs)),
	}
}
