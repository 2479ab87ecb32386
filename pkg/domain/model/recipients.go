package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Recipient is one alert email recipient
type Recipient struct {
	Name  string `yaml:"name"`  // Display name
	Email string `yaml:"email"` // Email address
}

// Validate validates the recipient
func (r *Recipient) Validate() error {
	if r.Email == "" {
		return goerr.New("recipient email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return goerr.New("recipient email is malformed",
			goerr.V("email", r.Email))
	}
	return nil
}

// RecipientsConfig is the alert recipient list loaded from YAML
type RecipientsConfig struct {
	Recipients []Recipient `yaml:"recipients"`
}

// Validate validates the recipients configuration
func (c *RecipientsConfig) Validate() error {
	emailMap := make(map[string]bool)
	for i, r := range c.Recipients {
		if err := r.Validate(); err != nil {
			return goerr.Wrap(err, "invalid recipient at index",
				goerr.V("index", i))
		}
		if emailMap[r.Email] {
			return goerr.New("duplicate recipient email",
				goerr.V("email", r.Email))
		}
		emailMap[r.Email] = true
	}
	return nil
}
