package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pobyzaarif/goshortcute"

	"vintageCRM/business/campaign"
	"vintageCRM/pkg/logger"
)

// MailjetConfig is kept local so the gateway does not depend on the app
// configuration package.
type MailjetConfig struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
	SenderEmail       string
	SenderName        string
}

// MailjetRepository is the outbound messaging gateway used by live
// campaign sends, one message per selected client.
type MailjetRepository struct {
	cfg    MailjetConfig
	client *http.Client
}

var _ campaign.Messenger = (*MailjetRepository)(nil)

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type mailjetParty struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type mailjetMessage struct {
	From     mailjetParty   `json:"From"`
	To       []mailjetParty `json:"To"`
	Subject  string         `json:"Subject"`
	TextPart string         `json:"TextPart"`
	HTMLPart string         `json:"HTMLPart"`
}

type mailjetPayload struct {
	Messages []mailjetMessage `json:"Messages"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, message string) error {
	payload := mailjetPayload{
		Messages: []mailjetMessage{{
			From: mailjetParty{
				Email: r.cfg.SenderEmail,
				Name:  r.cfg.SenderName,
			},
			To:       []mailjetParty{{Email: toEmail, Name: toName}},
			Subject:  subject,
			TextPart: message,
			HTMLPart: message,
		}},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mailjet payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.cfg.BaseURL+"/v3.1/send", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build mailjet request: %w", err)
	}

	basicAuth := goshortcute.StringtoBase64Encode(r.cfg.BasicAuthUsername + ":" + r.cfg.BasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+basicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mailjet: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	logger.Warn("mailjet returned non-2xx", "status", res.StatusCode, "body", string(body))

	return fmt.Errorf("mailer service return negative response %v", res.StatusCode)
}
