package service

import (
	"fmt"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailService sends transactional mail. Delivery is fire-and-forget: callers
// never wait on or roll back due to a send failure.
type MailService struct {
	Cfg *config.MailConfig
}

func NewMailService(cfg *config.Config) *MailService {
	return &MailService{Cfg: &cfg.Mail}
}

func (s *MailService) SendPasswordReset(to, token string) {
	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", s.Cfg.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Reset your password")
		m.SetBody("text/html", fmt.Sprintf(
			`<p>A password reset was requested for your account.</p>
<p><a href="%s?token=%s">Click here to choose a new password.</a></p>
<p>The link expires in 30 minutes. If you did not request this, ignore this mail.</p>`,
			s.Cfg.ResetURL, token))

		d := gomail.NewDialer(s.Cfg.Host, s.Cfg.Port, s.Cfg.Username, s.Cfg.Password)
		if err := d.DialAndSend(m); err != nil {
			logger.Log.Error("failed to send password reset mail", zap.String("to", to), zap.Error(err))
		}
	}()
}
