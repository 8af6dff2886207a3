// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bureau-foundation/eventchat/churchtools"
	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/clock"
	"github.com/bureau-foundation/eventchat/lib/config"
	"github.com/bureau-foundation/eventchat/lib/eventsync"
	"github.com/bureau-foundation/eventchat/lib/roster"
	"github.com/bureau-foundation/eventchat/lib/sealed"
	"github.com/bureau-foundation/eventchat/lib/version"
)

// IdentityEnvVar names the age identity file used when --identity is not
// given.
const IdentityEnvVar = "EVENTCHAT_IDENTITY"

// ConnectionParams holds the flags that locate configuration and
// credentials. Embed it in the params struct of every command that talks
// to Communi or ChurchTools.
type ConnectionParams struct {
	ConfigPath   string `json:"-" flag:"config,c" desc:"config file (default: $EVENTCHAT_CONFIG)"`
	EnvFile      string `json:"-" flag:"env-file" desc:"dotenv file loaded into the environment before the config"`
	SecretsFile  string `json:"-" flag:"secrets" desc:"age-sealed dotenv file loaded into the environment before the config"`
	IdentityFile string `json:"-" flag:"identity" desc:"age identity file that opens --secrets (default: $EVENTCHAT_IDENTITY)"`
}

// LoadConfig loads the dotenv and sealed secrets files into the process
// environment, then loads and validates the config file. Variables that
// are already set are never overwritten, so the real environment wins
// over both files.
func (p *ConnectionParams) LoadConfig() (*config.Config, error) {
	if p.EnvFile != "" {
		if err := godotenv.Load(p.EnvFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", p.EnvFile, err)
		}
	}

	if p.SecretsFile != "" {
		identity := p.IdentityFile
		if identity == "" {
			identity = os.Getenv(IdentityEnvVar)
		}
		if identity == "" {
			return nil, fmt.Errorf("--secrets requires --identity or %s", IdentityEnvVar)
		}
		variables, err := sealed.LoadEnv(p.SecretsFile, identity)
		if err != nil {
			return nil, err
		}
		for key, value := range variables {
			if _, set := os.LookupEnv(key); set {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return nil, fmt.Errorf("setting %s: %w", key, err)
			}
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Connection bundles the loaded configuration with the clients built from
// it.
type Connection struct {
	Config      *config.Config
	Communi     *communi.Session
	ChurchTools *churchtools.Client
	// Clock is handed to syncers created by Syncer. If nil, the real
	// clock is used.
	Clock  clock.Clock
	logger *slog.Logger
}

// Connect loads the configuration and dials both services.
func (p *ConnectionParams) Connect(ctx context.Context, logger *slog.Logger) (*Connection, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, err
	}
	return Dial(ctx, cfg, logger)
}

// ConnectCommuni loads the configuration and logs in to Communi only,
// for commands that never read ChurchTools.
func (p *ConnectionParams) ConnectCommuni(ctx context.Context, logger *slog.Logger) (*communi.Session, *config.Config, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	session, err := LoginCommuni(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return session, cfg, nil
}

// Dial creates the ChurchTools client and logs in to Communi. Every HTTP
// request is bounded by sync.request_timeout.
func Dial(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Connection, error) {
	source, err := NewChurchToolsClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	session, err := LoginCommuni(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Connection{
		Config:      cfg,
		Communi:     session,
		ChurchTools: source,
		logger:      logger,
	}, nil
}

// NewChurchToolsClient creates the ChurchTools client configured by cfg.
// No request is made.
func NewChurchToolsClient(cfg *config.Config, logger *slog.Logger) (*churchtools.Client, error) {
	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return churchtools.NewClient(churchtools.ClientConfig{
		URL:        cfg.ChurchTools.URL,
		Token:      cfg.ChurchTools.Token,
		HTTPClient: httpClient,
		Logger:     logger,
		UserAgent:  version.UserAgent(),
	})
}

// LoginCommuni creates the Communi client configured by cfg and logs in.
func LoginCommuni(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*communi.Session, error) {
	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	client, err := communi.NewClient(communi.ClientConfig{
		ServerURL:  cfg.Communi.Server,
		AppID:      cfg.Communi.AppID,
		Token:      cfg.Communi.Token,
		HTTPClient: httpClient,
		Logger:     logger,
		UserAgent:  version.UserAgent(),
	})
	if err != nil {
		return nil, err
	}
	session, err := client.Login(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("logged in to communi", "app", client.String(), "user_id", session.UserID())
	return session, nil
}

func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	return &http.Client{Timeout: timeout}, nil
}

// Syncer creates an eventsync.Syncer from the connection's clients and the
// sync section of the configuration.
func (c *Connection) Syncer() (*eventsync.Syncer, error) {
	return newSyncer(c.Config, c.Communi, c.ChurchTools, c.Clock, c.logger)
}

// NewSyncer creates an eventsync.Syncer for chat and source configured by
// cfg.Sync.
func NewSyncer(cfg *config.Config, chat eventsync.Chat, source eventsync.Source, logger *slog.Logger) (*eventsync.Syncer, error) {
	return newSyncer(cfg, chat, source, nil, logger)
}

func newSyncer(cfg *config.Config, chat eventsync.Chat, source eventsync.Source, clk clock.Clock, logger *slog.Logger) (*eventsync.Syncer, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, err := roster.ParseLocale(cfg.Sync.Locale)
	if err != nil {
		return nil, err
	}
	return eventsync.New(eventsync.Config{
		Chat:             chat,
		Source:           source,
		Policy:           roster.NewPolicy(cfg.Sync.RelevantServiceGroups, cfg.Sync.ExcludedServices),
		Location:         location,
		Locale:           locale,
		GroupDescription: cfg.Sync.GroupDescription,
		Clock:            clk,
		Logger:           logger,
	})
}
