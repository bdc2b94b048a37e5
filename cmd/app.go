package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/config"
	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// configDirName is the per-user directory under ~/.config.
const configDirName = "prompt-optimizer"

// userConfigDir returns ~/.config/prompt-optimizer, or "" without a home.
func userConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", configDirName)
}

// loadEnvFiles loads .env from standard locations.
// Existing environment variables always win.
func loadEnvFiles() {
	if dir := userConfigDir(); dir != "" {
		configEnv := filepath.Join(dir, ".env")
		if _, err := os.Stat(configEnv); err == nil {
			_ = godotenv.Load(configEnv)
		}
	}
	_ = godotenv.Load()
}

// resolveConfig resolves the config bytes.
// Checks: user flag -> filesystem locations -> embedded config.
// Returns raw bytes and source description.
func resolveConfig(userConfig string) ([]byte, string, error) {
	if userConfig != "" {
		data, err := os.ReadFile(userConfig)
		if err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", userConfig)
		}
		return data, userConfig, nil
	}

	var searchPaths []string
	if dir := userConfigDir(); dir != "" {
		searchPaths = append(searchPaths, filepath.Join(dir, "config.yaml"))
	}
	searchPaths = append(searchPaths, filepath.Join("configs", "config.yaml"))

	for _, p := range searchPaths {
		if data, err := os.ReadFile(p); err == nil {
			return data, p, nil
		}
	}

	if data, err := getEmbeddedConfig("config"); err == nil {
		return data, "(embedded) config.yaml", nil
	}
	return nil, "", fmt.Errorf("no config file found. Specify --config path")
}

// loadConfig resolves and parses the configuration.
func loadConfig(userConfig string) (*config.Config, string, error) {
	data, source, err := resolveConfig(userConfig)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromBytes(data)
	if err != nil {
		return nil, source, fmt.Errorf("failed to load configuration from %s: %w", source, err)
	}
	return cfg, source, nil
}

// newBackend builds the generation client for the configured auth mode.
func newBackend(ctx context.Context, cfg config.BackendConfig) (*external.Client, error) {
	clientCfg := external.ClientConfig{
		BaseURL:       cfg.BaseURL,
		Model:         cfg.Model,
		TopP:          cfg.TopP,
		Timeout:       cfg.Timeout,
		HealthTimeout: cfg.HealthTimeout,
	}

	switch cfg.Auth {
	case config.AuthBearer:
		clientCfg.APIKey = cfg.APIKey
	case config.AuthSigV4:
		transport, err := external.NewSigningTransport(ctx, cfg.Region, http.DefaultTransport)
		if err != nil {
			return nil, fmt.Errorf("failed to set up sigv4 signing: %w", err)
		}
		clientCfg.HTTPClient = &http.Client{Transport: transport}
	}
	return external.NewClient(clientCfg), nil
}

// newService wires the registry and backend into the optimizer.
func newService(ctx context.Context, cfg *config.Config) (*optimizer.Service, *external.Client, error) {
	backend, err := newBackend(ctx, cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	return optimizer.New(vendors.NewDefaultRegistry(), backend), backend, nil
}
