// Copyright 2025 FINOS
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	graphSendMailEndpoint = "https://graph.microsoft.com/v1.0/me/sendMail"

	salutation = "Dear Team,\n\n"
	signature  = "\n\nBest regards,\nCompliance Team"
)

// Attachment is one file attached to an outgoing message.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is an outgoing report email. The salutation and signature are
// added around Body on send.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends messages through the Microsoft Graph API.
type Mailer struct {
	endpoint    string
	accessToken string
	client      *http.Client
	logger      *slog.Logger
}

// Option configures a Mailer.
type Option func(*Mailer) error

// WithEndpoint overrides the Graph sendMail endpoint.
func WithEndpoint(endpoint string) Option {
	return func(m *Mailer) error {
		if endpoint == "" {
			return fmt.Errorf("endpoint must not be empty")
		}
		m.endpoint = endpoint
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
// Default has a 30 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Mailer) error {
		if client == nil {
			return fmt.Errorf("http client must not be nil")
		}
		m.client = client
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mailer) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMailer creates a mailer authenticated with a Graph OAuth access token.
func NewMailer(accessToken string, opts ...Option) (*Mailer, error) {
	if accessToken == "" {
		return nil, ErrAccessTokenRequired
	}

	m := &Mailer{
		endpoint:    graphSendMailEndpoint,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      slog.Default().With("component", "mailer"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Graph API wire types.
type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	Subject      string            `json:"subject"`
	Body         graphBody         `json:"body"`
	ToRecipients []graphRecipient  `json:"toRecipients"`
	Attachments  []graphAttachment `json:"attachments,omitempty"`
}

type graphSendMailRequest struct {
	Message graphMessage `json:"message"`
}

// Send posts the message to the Graph sendMail endpoint.
// Any non-2xx status is an error.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return ErrRecipientsRequired
	}

	payload := graphSendMailRequest{
		Message: graphMessage{
			Subject: msg.Subject,
			Body: graphBody{
				ContentType: "text",
				Content:     salutation + msg.Body + signature,
			},
		},
	}
	for _, address := range msg.To {
		var recipient graphRecipient
		recipient.EmailAddress.Address = address
		payload.Message.ToRecipients = append(payload.Message.ToRecipients, recipient)
	}
	for _, attachment := range msg.Attachments {
		payload.Message.Attachments = append(payload.Message.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         attachment.Name,
			ContentType:  attachment.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(attachment.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendMail returned status %d: %s", resp.StatusCode, string(detail))
	}

	m.logger.Info("email sent", "recipients", len(msg.To), "attachments", len(msg.Attachments))
	return nil
}
