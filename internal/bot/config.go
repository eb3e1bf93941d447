// Package bot wires the ticket conversation to Telegram: configuration,
// command and callback registration, the message sender and the HTTP surface.
package bot

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/supportbot/core/config"
	coredatabase "github.com/m3rciful/supportbot/core/database"
	"github.com/m3rciful/supportbot/core/telegram/state"
	"github.com/m3rciful/supportbot/internal/ticket"
)

// TicketConfig holds settings of the ticket conversation.
type TicketConfig struct {
	// TargetChat is the support chat tickets are sent to: a numeric chat id
	// or a public channel "@username".
	TargetChat           string `yaml:"target_chat_id" envconfig:"TARGET_CHAT_ID"`
	StateTTLMinutes      int    `yaml:"state_ttl_minutes" envconfig:"TICKET_STATE_TTL_MINUTES"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes" envconfig:"TICKET_SWEEP_INTERVAL_MINUTES"`

	destination ticket.Recipient
}

// Config is the full supportbot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Ticket   TicketConfig        `yaml:"ticket"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the shared runtime configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the optional YAML file at path, overlays the environment
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := coreconfig.Load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize validates required fields and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if strings.TrimSpace(c.Ticket.TargetChat) == "" {
		return fmt.Errorf("target chat id is required (TARGET_CHAT_ID)")
	}
	dest, err := ticket.ParseRecipient(c.Ticket.TargetChat)
	if err != nil {
		return fmt.Errorf("invalid TARGET_CHAT_ID: %w", err)
	}
	c.Ticket.destination = dest
	if c.Ticket.StateTTLMinutes < 0 || c.Ticket.SweepIntervalMinutes < 0 {
		return fmt.Errorf("ticket.state_ttl_minutes and ticket.sweep_interval_minutes must be >= 0")
	}
	if c.Ticket.StateTTLMinutes == 0 {
		c.Ticket.StateTTLMinutes = int(state.DefaultTTL / time.Minute)
	}
	if c.Ticket.SweepIntervalMinutes == 0 {
		c.Ticket.SweepIntervalMinutes = int(state.DefaultSweepInterval / time.Minute)
	}
	return c.Database.Normalize()
}

// Destination returns the support chat resolved by Normalize.
func (c TicketConfig) Destination() ticket.Recipient {
	return c.destination
}

// StateOptions converts the ticket settings into store options.
func (c TicketConfig) StateOptions() state.Options {
	return state.Options{
		TTL:           time.Duration(c.StateTTLMinutes) * time.Minute,
		SweepInterval: time.Duration(c.SweepIntervalMinutes) * time.Minute,
	}
}
