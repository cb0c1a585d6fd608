package email

import (
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"

	"keygate/internal/application/notification"
	"keygate/internal/domain/entitlement"
	"keygate/internal/shared/biztime"
)

// Ensure SMTPEmailService implements the delivery contract
var _ notification.EmailService = (*SMTPEmailService)(nil)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	DownloadURL string
}

// SMTPEmailService delivers transactional mail over SMTP. User-supplied
// strings (names, referrals) are sanitized before they reach HTML bodies.
type SMTPEmailService struct {
	config    SMTPConfig
	dialer    *gomail.Dialer
	sanitizer *bluemonday.Policy
	printer   *message.Printer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	return &SMTPEmailService{
		config:    config,
		dialer:    gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		sanitizer: bluemonday.StrictPolicy(),
		printer:   message.NewPrinter(language.English),
	}
}

func (s *SMTPEmailService) SendKeyDelivery(to, name, key string, plan entitlement.Plan, expiresAt time.Time) error {
	safeName := s.sanitizer.Sanitize(name)
	if safeName == "" {
		safeName = "there"
	}
	price := s.formatPrice(plan.PriceCents())

	subject := "Your access key is ready"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thanks for your purchase!</h2>
			<p>Hi %s,</p>
			<p>Your %s plan (%s) is active. Here is your access key:</p>
			<p><code style="font-size:1.2em">%s</code></p>
			<p>It expires on %s.</p>
			<p>Download the client here: <a href="%s">%s</a></p>
			<p>Keep this key private. It can only be used on one device at a time.</p>
		</body>
		</html>
	`, safeName, plan, price, key, biztime.FormatDate(expiresAt), s.config.DownloadURL, s.config.DownloadURL)

	plainBody := fmt.Sprintf(`
Thanks for your purchase!

Hi %s,

Your %s plan (%s) is active. Here is your access key:

%s

It expires on %s.

Download the client here: %s

Keep this key private. It can only be used on one device at a time.
	`, safeName, plan, price, key, biztime.FormatDate(expiresAt), s.config.DownloadURL)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendAdminOrderAlert(to, orderID, name, email, plan, referral string) error {
	safeName := s.sanitizer.Sanitize(name)
	safeReferral := s.sanitizer.Sanitize(referral)

	subject := fmt.Sprintf("Order %s needs attention", orderID)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Order awaiting review</h2>
			<ul>
				<li>Order: %s</li>
				<li>Name: %s</li>
				<li>Email: %s</li>
				<li>Plan: %s</li>
				<li>Note: %s</li>
			</ul>
		</body>
		</html>
	`, orderID, safeName, email, plan, safeReferral)

	plainBody := fmt.Sprintf(`
Order awaiting review

Order: %s
Name: %s
Email: %s
Plan: %s
Note: %s
	`, orderID, safeName, email, plan, safeReferral)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

func (s *SMTPEmailService) formatPrice(cents uint64) string {
	unit := currency.USD
	return s.printer.Sprintf("%v", currency.Symbol(unit.Amount(float64(cents)/100)))
}
