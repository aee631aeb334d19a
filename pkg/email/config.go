package email

import (
	"fmt"
	"time"
)

// Driver names accepted by EMAIL_DRIVER.
const (
	DriverSMTP     = "smtp"
	DriverPostmark = "postmark"
	DriverDev      = "dev"
)

type Config struct {
	Driver      string `env:"EMAIL_DRIVER" envDefault:"dev"`
	SenderEmail string `env:"SENDER_EMAIL" envDefault:"noreply@example.com"`
	ReplyTo     string `env:"EMAIL_REPLY_TO"`

	SMTPHost     string        `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
	SMTPSSL      bool          `env:"SMTP_SSL" envDefault:"false"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	DevOutputDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// New builds the sender selected by cfg.Driver.
func New(cfg Config) (EmailSender, error) {
	switch cfg.Driver {
	case DriverSMTP:
		c, err := NewSMTPClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverPostmark:
		return NewPostmarkClient(cfg)
	case DriverDev, "":
		return NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
