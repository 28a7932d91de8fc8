package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/draftcommit/draftcommit/internal/pkg/config"
)

// RunInteractiveSetup runs the first-use setup wizard.
func RunInteractiveSetup(cfgMgr *config.ViperManager) error {
	fmt.Println("No configuration found. Let's set up draftcommit!")
	fmt.Println()

	// Ignore the error: an existing file is fine, we only need the
	// directory in place.
	_ = cfgMgr.Init()

	var preferred string

	err := huh.NewSelect[string]().
		Title("Preferred Provider").
		Description("Used first; the other becomes the fallback when its key is configured.").
		Options(
			huh.NewOption("Gemini", config.ProviderGemini),
			huh.NewOption("OpenAI", config.ProviderOpenAI),
		).
		Value(&preferred).
		Run()
	if err != nil {
		return err
	}

	var geminiKey string
	var openaiKey string
	var model string

	switch preferred {
	case config.ProviderOpenAI:
		model = "gpt-4o-mini"
	default:
		model = "gemini-2.0-flash"
	}

	keyValidator := func(s string) error {
		if s != "" && len(strings.TrimSpace(s)) < 20 {
			return fmt.Errorf("api key too short")
		}
		return nil
	}

	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Gemini API Key").
			Description("Leave empty to rely on GEMINI_API_KEY or a .env file").
			Value(&geminiKey).
			Password(true).
			Validate(keyValidator),
		huh.NewInput().
			Title("OpenAI API Key").
			Description("Leave empty to rely on OPENAI_API_KEY or a .env file").
			Value(&openaiKey).
			Password(true).
			Validate(keyValidator),
		huh.NewInput().
			Title("Model Name").
			Description("Model for the preferred provider").
			Value(&model).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("model name cannot be empty")
				}
				return nil
			}),
	)).Run()
	if err != nil {
		return err
	}

	if err := cfgMgr.Set("providers.preferred", preferred); err != nil {
		return fmt.Errorf("failed to set preferred provider: %w", err)
	}

	if geminiKey != "" {
		if err := cfgMgr.Set("providers.gemini_api_key", geminiKey); err != nil {
			return fmt.Errorf("failed to set gemini api key: %w", err)
		}
	}
	if openaiKey != "" {
		if err := cfgMgr.Set("providers.openai_api_key", openaiKey); err != nil {
			return fmt.Errorf("failed to set openai api key: %w", err)
		}
	}

	modelKey := "providers.gemini_model"
	if preferred == config.ProviderOpenAI {
		modelKey = "providers.openai_model"
	}
	if err := cfgMgr.Set(modelKey, model); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}

	// The user just typed their keys in; no point warning them about
	// where those keys live.
	_ = cfgMgr.AcknowledgeSecurityWarning()

	fmt.Printf("\nConfiguration saved to %s\n", cfgMgr.GetConfigPath())
	fmt.Println("Setup complete! You can now use draftcommit.")
	fmt.Println()

	return nil
}
