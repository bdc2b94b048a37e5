package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/tui"
)

// Environment keys written by setup. config.applyEnvOverrides reads them.
const (
	envBaseURL = "LM_STUDIO_BASE_URL"
	envModel   = "LM_STUDIO_MODEL"
	envAPIKey  = "LM_STUDIO_API_KEY"
)

// runSetup asks for backend settings and saves them to a .env file.
func runSetup(_ []string) int {
	term := tui.NewTerminal()
	term.PrintHeader("Backend Setup")

	values, err := promptBackendSettings(term)
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			term.PrintWarn("Setup cancelled")
			return 130
		}
		term.PrintError(err.Error())
		return 1
	}

	envPath, err := chooseEnvPath(term)
	if err != nil {
		term.PrintWarn("Setup cancelled")
		return 130
	}

	if err := persistEnv(envPath, values); err != nil {
		term.PrintError(err.Error())
		return 1
	}
	term.PrintSuccess("Saved backend settings to " + envPath)
	return 0
}

// promptBackendSettings collects the values to persist.
func promptBackendSettings(term *tui.Terminal) (map[string]string, error) {
	values := make(map[string]string)

	baseURL, err := term.PromptString(fmt.Sprintf("Backend base URL [%s]: ", external.DefaultBaseURL))
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = external.DefaultBaseURL
	}
	values[envBaseURL] = baseURL

	model, err := term.PromptString("Model name (Enter for the backend default): ")
	if err != nil {
		return nil, err
	}
	if model != "" {
		values[envModel] = model
	}

	if term.PromptYesNo("Does the backend require an API key?", false) {
		key, err := term.PromptString("API key: ")
		if err != nil {
			return nil, err
		}
		if key != "" {
			values[envAPIKey] = key
		}
	}
	return values, nil
}

// chooseEnvPath asks where to save the settings.
func chooseEnvPath(term *tui.Terminal) (string, error) {
	items := []tui.MenuItem{
		{Label: "This project", Description: ".env in the current directory"},
	}
	global := userConfigDir()
	if global != "" {
		items = append(items, tui.MenuItem{Label: "Global", Description: filepath.Join(global, ".env")})
	}

	idx, err := term.SelectMenu("Save settings for", items)
	if err != nil {
		return "", err
	}
	if idx == 1 {
		return filepath.Join(global, ".env"), nil
	}
	return ".env", nil
}

// persistEnv merges values into the .env file at envPath, keeping
// unrelated keys.
func persistEnv(envPath string, values map[string]string) error {
	dir := filepath.Dir(envPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	existing, err := godotenv.Read(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not read %s: %w", envPath, err)
	}
	if existing == nil {
		existing = make(map[string]string, len(values))
	}
	for k, v := range values {
		existing[k] = v
	}

	content, err := godotenv.Marshal(existing)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", envPath, err)
	}
	if err := os.WriteFile(envPath, []byte(content+"\n"), 0600); err != nil {
		return fmt.Errorf("could not write %s: %w", envPath, err)
	}
	return nil
}
