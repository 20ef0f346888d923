package prompts

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/pedagogue/pkg/types"
)

// ToPromptYAML renders structured prompt context as YAML, which keeps token
// usage lower than pretty-printed JSON for nested maps.
func ToPromptYAML(data interface{}) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func logPrompts(logger *slog.Logger, sysPrompt, userPrompt string) {
	if os.Getenv("DEBUG_ORACLE_PROMPTS") != "true" {
		return
	}
	if logger == nil {
		return
	}

	logger.Debug("Generated prompts - System Prompt follows")
	fmt.Println("=== SYSTEM PROMPT ===")
	fmt.Println(sysPrompt)
	logger.Debug("Generated prompts - User Prompt follows")
	fmt.Println("=== USER PROMPT ===")
	fmt.Println(userPrompt)
	fmt.Println("=== END PROMPTS ===")
}

// LogResponses prints raw oracle output when prompt debugging is enabled.
func LogResponses(logger *slog.Logger, response types.Response) {
	if os.Getenv("DEBUG_ORACLE_PROMPTS") != "true" {
		return
	}
	if logger == nil {
		return
	}

	logger.Debug("Oracle response follows")
	fmt.Println("=== RESPONSE ===")
	fmt.Println(response.Content)
	fmt.Println("=== END RESPONSE ===")
}

func messages(sys, user string) []types.Message {
	return []types.Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: user},
	}
}
