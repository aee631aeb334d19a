// Package email delivers plain-text email through interchangeable transports.
//
// All transports implement EmailSender:
//   - SMTPClient talks to any SMTP relay through gopkg.in/mail.v2
//   - the Postmark client uses the Postmark HTTP API
//   - DevSender writes messages to a local directory
//
// New picks a transport from Config.Driver ("smtp", "postmark" or "dev"):
//
//	var cfg email.Config
//	config.MustLoad(&cfg)
//
//	sender, err := email.New(cfg)
//	if err != nil {
//		return err
//	}
//
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Maintenance window",
//		BodyText: "The plant will be offline on Sunday.",
//	})
//
// Params are validated before the transport is touched and invalid params wrap
// ErrInvalidParams. Transport errors wrap ErrFailedToSendEmail.
package email
