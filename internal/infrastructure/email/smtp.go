package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/config"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// SMTPTrialNotifier sends the pre-conversion heads-up email when a trial is
// about to become a paid subscription.
type SMTPTrialNotifier struct {
	config *config.EmailConfig
	dialer *gomail.Dialer
	users  usecases.UserDirectory
	logger logger.Interface
}

func NewSMTPTrialNotifier(cfg *config.EmailConfig, users usecases.UserDirectory, logger logger.Interface) *SMTPTrialNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &SMTPTrialNotifier{
		config: cfg,
		dialer: dialer,
		users:  users,
		logger: logger,
	}
}

func (s *SMTPTrialNotifier) NotifyTrialEnding(ctx context.Context, userID uint, planID string, trialEnd time.Time) error {
	to, name, err := s.users.GetUserEmail(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}

	endDate := trialEnd.Format("January 2, 2006")
	subject := "Your Drafter trial ends soon"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Hi %s,</h2>
			<p>Your Drafter trial ends on <strong>%s</strong>.</p>
			<p>After that your subscription starts and your card will be charged. No action is needed if you want to keep writing with Drafter.</p>
			<p>To change or cancel your plan, open the billing portal from your account page before the trial ends.</p>
		</body>
		</html>
	`, name, endDate)

	plainBody := fmt.Sprintf(`Hi %s,

Your Drafter trial ends on %s.

After that your subscription starts and your card will be charged. No action
is needed if you want to keep writing with Drafter.

To change or cancel your plan, open the billing portal from your account page
before the trial ends.
`, name, endDate)

	if err := s.sendEmail(to, subject, htmlBody, plainBody); err != nil {
		return err
	}

	s.logger.Infow("trial ending email sent", "user_id", userID, "plan_id", planID)
	return nil
}

func (s *SMTPTrialNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
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
