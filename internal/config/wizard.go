package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .marginalia.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to marginalia! Let's configure your reader.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Model selection.
	modelPrompt := promptui.Select{
		Label: "Select annotation model",
		Items: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-nano"},
	}
	_, model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	cfg.Model = model

	// 2. Default annotation goal.
	goalPrompt := promptui.Prompt{
		Label:   "Default annotation goal",
		Default: DefaultGoal,
	}
	goal, err := goalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	cfg.Goal = goal

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Annotation server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.Client.ServerURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 4. Channel cap for the client side.
	channelsPrompt := promptui.Prompt{
		Label:   "Max concurrent annotation channels",
		Default: strconv.Itoa(cfg.Client.MaxChannels),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("must be a positive number")
			}
			return nil
		},
	}
	channelsStr, err := channelsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("max channels: %w", err)
	}
	cfg.Client.MaxChannels, _ = strconv.Atoi(channelsStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(".marginalia.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nConfiguration saved to .marginalia.yml")

	if os.Getenv(APIKeyEnvVar) == "" {
		fmt.Printf("Note: set %s in your environment before running marginalia serve.\n", APIKeyEnvVar)
	}

	return cfg, nil
}
