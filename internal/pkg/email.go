package pkg

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	"OWS_Community/internal/model"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件人邮箱
	Password string // 授权码/密码
	From     string // 显示的发件人，可与 Username 相同
}

// Mailer 审核结果通知
type Mailer struct {
	cfg  SMTPConfig
	send func(m *gomail.Message) error
}

func NewMailer(cfg SMTPConfig) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &Mailer{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

func (m *Mailer) NotifyResolution(_ context.Context, to *model.User, sub *model.Submission) error {
	if to == nil || to.Email == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to.Email)
	msg.SetHeader("Subject", ResolutionSubject(sub))
	msg.SetBody("text/html", ResolutionHTML(to.Name, sub))
	return m.send(msg)
}

func ResolutionSubject(sub *model.Submission) string {
	return fmt.Sprintf("Your spot \"%s\" was %s", sub.Name, sub.Status)
}

func ResolutionHTML(name string, sub *model.Submission) string {
	verdict := "has been added to the map"
	if sub.Status == model.SubmissionRejected {
		verdict = "was not accepted"
	}
	return fmt.Sprintf(`<p>Hi %s,</p><p>Your submission <b>%s</b> %s.</p><p>Thanks for contributing.</p>`,
		html.EscapeString(name), html.EscapeString(sub.Name), verdict)
}
