package service

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/gomail.v2"

	"github.com/kehm/eckochain-client/internal/config"
)

// Default email subjects.
const (
	subjectNewProposal      = "ECKO - You have a new pending contract proposal"
	subjectContractAccepted = "ECKO - Your proposal has been accepted"
	subjectContractRejected = "ECKO - Your proposal has been rejected"
	subjectNewDownload      = "ECKO - A new user has downloaded your dataset"
)

// MailService sends contract lifecycle notifications over SMTP using HTML
// templates from the configured template directory.
type MailService struct {
	conf config.Mail
}

func NewMailService(conf config.Mail) *MailService {
	return &MailService{conf: conf}
}

func (s *MailService) NotifyProposal(recipient string) error {
	return s.send(recipient, subjectNewProposal, "proposal")
}

func (s *MailService) NotifyAccepted(recipient string) error {
	return s.send(recipient, subjectContractAccepted, "accepted")
}

func (s *MailService) NotifyRejected(recipient string) error {
	return s.send(recipient, subjectContractRejected, "rejected")
}

func (s *MailService) NotifyDownload(recipient string) error {
	return s.send(recipient, subjectNewDownload, "download")
}

func (s *MailService) send(recipient, subject, template string) error {
	body, err := os.ReadFile(filepath.Join(s.conf.TemplatePath, template+".html"))
	if err != nil {
		return fmt.Errorf("mail template %s: %w", template, err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", s.conf.From)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", string(body))

	dialer := gomail.NewDialer(s.conf.Host, s.conf.Port, s.conf.User, s.conf.Password)
	return dialer.DialAndSend(message)
}
