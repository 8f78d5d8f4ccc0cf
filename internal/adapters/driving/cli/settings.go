package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, chunking parameters, and
other options.

Use 'set' for single values or run the interactive setup wizard.`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Update one setting",
	Long: `Updates a single setting by dot-notation key, for example:

  trove settings set embedding.model all-mpnet-base-v2
  trove settings set chunker.chunk_size 800

Changing the embedding model or chunk parameters marks the index stale;
run 'trove index rebuild' afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

var settingsSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding provider step by step.`,
	RunE:  runSettingsSetup,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsSetupCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsOrErr guards every settings subcommand against a partially
// wired CLI.
func settingsOrErr() (driving.SettingsService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	service, err := settingsOrErr()
	if err != nil {
		return err
	}

	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	for _, k := range service.Keys() {
		value := k.Value
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-26s %s\n", k.Key, value)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.IsConfigured() {
		cmd.Printf("  Status: configured (%d dimensions)\n", settings.Embedding.Dimensions())
	} else {
		cmd.Println("  Status: not configured")
		cmd.Println("  Run 'trove settings setup' to fix configuration issues.")
	}

	if service.IndexStale() {
		cmd.Println()
		cmd.Println("Warning: settings changed since the last rebuild; run 'trove index rebuild'.")
	}

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	service, err := settingsOrErr()
	if err != nil {
		return err
	}

	key := args[0]
	for _, k := range service.Keys() {
		if k.Key == key {
			cmd.Println(k.Value)
			return nil
		}
	}

	return fmt.Errorf("unknown setting: %s", key)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	service, err := settingsOrErr()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := service.Update(key, value); err != nil {
		return fmt.Errorf("updating setting: %w", err)
	}
	cmd.Printf("Set %s to %s\n", key, value)

	if service.IndexStale() {
		cmd.Println("Index is now stale; run 'trove index rebuild' to apply the change.")
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	service, err := settingsOrErr()
	if err != nil {
		return err
	}

	if err := service.Reset(); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")

	if service.IndexStale() {
		cmd.Println("Index is now stale; run 'trove index rebuild' to apply the change.")
	}
	return nil
}

func runSettingsSetup(cmd *cobra.Command, _ []string) error {
	service, err := settingsOrErr()
	if err != nil {
		return err
	}

	cmd.Println("Trove Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	provider := wizardPickProvider(cmd, reader)
	model, err := wizardPickModel(cmd, reader, provider)
	if err != nil {
		return err
	}
	apiKey, baseURL, err := wizardProviderAccess(cmd, reader, provider, settings.Embedding.APIKey)
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	settings.Embedding.APIKey = apiKey
	settings.Embedding.BaseURL = baseURL

	if err := service.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Print("Validating configuration... ")
	if err := service.ValidateEmbeddingConfig(ctx); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	cmd.Println()

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	if service.IndexStale() {
		cmd.Println("Index is now stale; run 'trove index rebuild' to re-embed your documents.")
	}
	return nil
}

// wizardPickProvider shows the provider menu and reads a selection.
func wizardPickProvider(cmd *cobra.Command, reader *bufio.Reader) domain.EmbeddingProvider {
	cmd.Println("Step 1: Select Embedding Provider")
	cmd.Println("---------------------------------")

	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")

	choice := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[choice-1]
	cmd.Printf("Selected: %s\n\n", provider.Description())
	return provider
}

// wizardPickModel lists known models and reads one, defaulting to the
// provider's standard model.
func wizardPickModel(cmd *cobra.Command, reader *bufio.Reader, provider domain.EmbeddingProvider) (string, error) {
	cmd.Println("Step 2: Select Model")
	cmd.Println("--------------------")
	cmd.Println("Known models:")
	for _, name := range domain.KnownEmbeddingModels() {
		dims, _ := domain.ModelDimensions(name)
		cmd.Printf("  %s (%d dimensions)\n", name, dims)
	}

	fallback := domain.DefaultEmbeddingModels()[provider]
	cmd.Printf("\nEnter model name [%s]: ", fallback)
	model := readLine(reader)
	if model == "" {
		model = fallback
	}
	if _, ok := domain.ModelDimensions(model); !ok {
		return "", fmt.Errorf("unknown model: %s", model)
	}
	cmd.Println()
	return model, nil
}

// wizardProviderAccess collects whatever access the provider needs: an
// API key, a server address, or nothing.
func wizardProviderAccess(
	cmd *cobra.Command, reader *bufio.Reader, provider domain.EmbeddingProvider, currentKey string,
) (apiKey, baseURL string, err error) {
	switch {
	case provider.RequiresAPIKey():
		cmd.Println("Step 3: API Key")
		cmd.Println("---------------")
		apiKey, err = wizardAPIKey(cmd, reader, currentKey)
		if err != nil {
			return "", "", err
		}
	case provider == domain.EmbeddingProviderOllama:
		cmd.Println("Step 3: Server Address")
		cmd.Println("----------------------")
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		baseURL = readLine(reader)
	default:
		cmd.Println("Step 3: Provider Access (skipped)")
		cmd.Println("---------------------------------")
		cmd.Println("The built-in provider needs no credentials.")
	}
	cmd.Println()
	return apiKey, baseURL, nil
}

// wizardAPIKey prompts for a key. An existing key is kept when the
// prompt is left empty; without one, an empty answer is an error.
func wizardAPIKey(cmd *cobra.Command, reader *bufio.Reader, currentKey string) (string, error) {
	if currentKey != "" {
		cmd.Printf("Current key: %s\n", maskAPIKey(currentKey))
		cmd.Print("Enter new API key (empty keeps current): ")
		key := readSecret(reader)
		cmd.Println()
		if key == "" {
			key = currentKey
		}
		return key, nil
	}

	cmd.Print("Enter API key: ")
	key := readSecret(reader)
	cmd.Println()
	if key == "" {
		return "", errors.New("API key is required for this provider")
	}
	return key, nil
}

// readLine reads one trimmed line. Read failures come back as an empty
// line, which every prompt treats as "accept the default".
func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice turns a 1-based menu answer into a selection, falling
// back to defaultVal for empty, malformed, or out-of-range input.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readSecret reads without local echo when stdin is a terminal, so API
// keys stay out of the scrollback. Piped input falls back to a plain
// line read.
func readSecret(reader *bufio.Reader) string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if secret, err := term.ReadPassword(fd); err == nil {
			return string(secret)
		}
	}
	return readLine(reader)
}

// maskAPIKey keeps just enough of a key to recognise it.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
