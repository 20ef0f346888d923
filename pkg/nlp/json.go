package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/pedagogue/pkg/types"
)

var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return thinkTagRe.ReplaceAllString(input, "")
}

// ExtractJSONFromResponse attempts to extract JSON from oracle responses that
// may contain markdown code blocks or other surrounding text.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(RemoveThinkTags(response))

	// Check for ```json ... ``` pattern
	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json")
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	// Check for ``` ... ``` pattern
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			// Remove first and last line (the ``` markers)
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Try to find JSON object boundaries
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	// Prefer an array if it opens before the first object
	arrStart := strings.Index(response, "[")
	arrEnd := strings.LastIndex(response, "]")
	if arrStart != -1 && arrEnd > arrStart && (jsonStart == -1 || arrStart < jsonStart) {
		return response[arrStart : arrEnd+1]
	}

	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	if arrStart != -1 && arrEnd != -1 && arrEnd > arrStart {
		return response[arrStart : arrEnd+1]
	}

	// Return as-is if no extraction possible
	return response
}

// DecodeJSON extracts and decodes a JSON payload from raw oracle output into
// target, attempting mechanical repair of truncated or sloppy JSON before
// giving up.
func DecodeJSON(raw string, target interface{}) error {
	extracted := ExtractJSONFromResponse(raw)

	if err := json.Unmarshal([]byte(extracted), target); err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(extracted)
	if repairErr != nil {
		return NewMalformedResponseError(
			fmt.Sprintf("response is not valid JSON and could not be repaired: %v", repairErr), raw)
	}

	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return NewMalformedResponseError(
			fmt.Sprintf("repaired JSON does not match expected shape: %v", err), raw)
	}

	return nil
}

// reformatInstruction is the stricter follow-up sent when a response fails to
// parse. The original malformed output is echoed back so the oracle can fix it.
const reformatInstruction = "Your previous response could not be parsed. " +
	"Respond again with ONLY the JSON value, no prose, no markdown fences, no explanation.\n\n" +
	"Previous response:\n%s"

// GenerateJSON sends messages to the oracle and decodes the response into
// target. Oracle output is untrusted: if the first response fails shape
// validation, one stricter reformat retry is issued before the call fails
// with a MalformedResponseError.
func GenerateJSON(ctx context.Context, client Client, messages []types.Message, target interface{}) error {
	resp, err := client.Chat(ctx, messages)
	if err != nil {
		return err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return NewEmptyResponseError("oracle returned an empty response")
	}

	firstErr := DecodeJSON(resp.Content, target)
	if firstErr == nil {
		return nil
	}

	// One bounded reformat retry with a stricter instruction.
	retryMessages := append(append([]types.Message{}, messages...),
		NewAssistantMessage(resp.Content),
		NewUserMessage(fmt.Sprintf(reformatInstruction, truncateForPrompt(resp.Content, 2000))),
	)

	retryResp, err := client.Chat(ctx, retryMessages)
	if err != nil {
		return err
	}
	if retryResp == nil || strings.TrimSpace(retryResp.Content) == "" {
		return firstErr
	}

	if err := DecodeJSON(retryResp.Content, target); err != nil {
		return err
	}
	return nil
}

// GenerateBoolean sends messages to the oracle and interprets the answer as a
// yes/no judgment. Accepts bare yes/no tokens and JSON booleans; applies the
// same single reformat retry as GenerateJSON on unparseable output.
func GenerateBoolean(ctx context.Context, client Client, messages []types.Message) (bool, error) {
	resp, err := client.Chat(ctx, messages)
	if err != nil {
		return false, err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return false, NewEmptyResponseError("oracle returned an empty response")
	}

	if v, ok := parseBoolean(resp.Content); ok {
		return v, nil
	}

	retryMessages := append(append([]types.Message{}, messages...),
		NewAssistantMessage(resp.Content),
		NewUserMessage("Your previous response could not be interpreted. Answer with exactly one word: yes or no."),
	)

	retryResp, err := client.Chat(ctx, retryMessages)
	if err != nil {
		return false, err
	}
	if retryResp != nil {
		if v, ok := parseBoolean(retryResp.Content); ok {
			return v, nil
		}
	}

	return false, NewMalformedResponseError("oracle did not produce a yes/no answer", resp.Content)
}

// parseBoolean interprets free-form oracle output as a yes/no answer.
func parseBoolean(content string) (value, ok bool) {
	cleaned := strings.ToLower(strings.TrimSpace(RemoveThinkTags(content)))
	cleaned = strings.Trim(cleaned, ".!\"'`")

	switch cleaned {
	case "yes", "true", "y":
		return true, true
	case "no", "false", "n":
		return false, true
	}

	// Tolerate a leading token followed by explanation ("Yes, because...").
	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ' ' || r == ',' || r == ':' || r == ';' || r == '\n'
	})
	if len(fields) > 0 {
		switch fields[0] {
		case "yes", "true":
			return true, true
		case "no", "false":
			return false, true
		}
	}

	// JSON-shaped answers like {"answer": true}
	var payload struct {
		Answer *bool `json:"answer"`
	}
	if err := json.Unmarshal([]byte(ExtractJSONFromResponse(content)), &payload); err == nil && payload.Answer != nil {
		return *payload.Answer, true
	}

	return false, false
}

// truncateForPrompt bounds echoed output so reformat prompts stay small.
func truncateForPrompt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
