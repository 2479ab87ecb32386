package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/service/notify"
	"gopkg.in/yaml.v3"
)

// Notify holds alert email configuration
type Notify struct {
	BrevoAPIKey    string
	SenderName     string
	SenderEmail    string
	RecipientsPath string
}

// Flags returns CLI flags for Notify configuration
func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "brevo-api-key",
			Usage:       "Brevo API key for alert emails",
			Category:    "Notification",
			Sources:     cli.EnvVars("VERDICTTRACE_BREVO_API_KEY"),
			Destination: &n.BrevoAPIKey,
		},
		&cli.StringFlag{
			Name:        "sender-name",
			Usage:       "Alert email sender name",
			Category:    "Notification",
			Value:       "VerdictTrace",
			Sources:     cli.EnvVars("VERDICTTRACE_SENDER_NAME"),
			Destination: &n.SenderName,
		},
		&cli.StringFlag{
			Name:        "sender-email",
			Usage:       "Alert email sender address",
			Category:    "Notification",
			Sources:     cli.EnvVars("VERDICTTRACE_SENDER_EMAIL"),
			Destination: &n.SenderEmail,
		},
		&cli.StringFlag{
			Name:        "recipients-file",
			Usage:       "YAML file listing alert recipients",
			Category:    "Notification",
			Sources:     cli.EnvVars("VERDICTTRACE_RECIPIENTS_FILE"),
			Destination: &n.RecipientsPath,
		},
	}
}

// Configure creates the email client and recipient list. Returns nil
// client when email alerting is not configured; the core then skips email
// fan-out.
func (n *Notify) Configure() (interfaces.EmailClient, []model.Recipient, error) {
	if !n.IsConfigured() {
		return nil, nil, nil
	}

	recipientsCfg, err := LoadRecipientsFromFile(n.RecipientsPath)
	if err != nil {
		return nil, nil, err
	}

	client := notify.NewBrevoClient(n.BrevoAPIKey, n.SenderName, n.SenderEmail)
	return client, recipientsCfg.Recipients, nil
}

// IsConfigured checks if email alerting is fully configured
func (n *Notify) IsConfigured() bool {
	return n.BrevoAPIKey != "" && n.SenderEmail != "" && n.RecipientsPath != ""
}

// LogValue returns structured log value
func (n Notify) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("hasAPIKey", n.BrevoAPIKey != ""),
		slog.String("senderEmail", n.SenderEmail),
		slog.String("recipientsFile", n.RecipientsPath),
	)
}

// LoadRecipientsFromFile loads the alert recipient list from a YAML file
func LoadRecipientsFromFile(path string) (*model.RecipientsConfig, error) {
	if path == "" {
		return nil, goerr.New("recipients file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "recipients file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read recipients file",
			goerr.V("path", path))
	}

	var config model.RecipientsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse recipients YAML",
			goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid recipients configuration",
			goerr.V("path", path))
	}

	return &config, nil
}
