package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Graph body content types.
const (
	ContentTypeText = "Text"
	ContentTypeHTML = "HTML"
)

var contentTypeAliases = map[string]string{
	"text":       ContentTypeText,
	"plain":      ContentTypeText,
	"text/plain": ContentTypeText,
	"html":       ContentTypeHTML,
	"text/html":  ContentTypeHTML,
}

// NormalizeContentType maps a user-facing body type to Graph's "Text" or
// "HTML". Matching is case-insensitive; unknown values become "Text".
func NormalizeContentType(s string) string {
	if ct, ok := contentTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ct
	}

	return ContentTypeText
}

// ParseRecipients turns "a@x.com, b@y.com" into Graph recipients, one per
// non-empty trimmed segment. Empty input yields an empty slice.
func ParseRecipients(field string) []Recipient {
	recipients := []Recipient{}

	for _, addr := range strings.Split(field, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}

		recipients = append(recipients, Recipient{EmailAddress: EmailAddress{Address: addr}})
	}

	return recipients
}

// Message is the input to SendMail. To, Cc and Bcc are comma-separated
// address lists.
type Message struct {
	Sender          string // mailbox the message is sent from
	Subject         string
	ContentType     string // see NormalizeContentType
	Body            string
	To              string
	Cc              string
	Bcc             string
	Importance      string // "Low", "Normal" or "High"; passed through as given
	Attachments     []AttachmentSource
	SaveToSentItems bool
}

// SendOutcome classifies the result of SendMail.
type SendOutcome int

const (
	// SendOK means Graph accepted the message (202) for asynchronous delivery.
	SendOK SendOutcome = iota
	// SendNoToken means the session had no token; nothing was sent.
	SendNoToken
	// SendTransportError means the request could not be built or completed.
	SendTransportError
	// SendHTTPError means Graph answered with a status other than 202.
	SendHTTPError
)

func (o SendOutcome) String() string {
	switch o {
	case SendOK:
		return "sent"
	case SendNoToken:
		return "no token"
	case SendTransportError:
		return "transport error"
	case SendHTTPError:
		return "http error"
	default:
		return fmt.Sprintf("SendOutcome(%d)", int(o))
	}
}

type sendMailRequest struct {
	Message         messagePayload `json:"message"`
	SaveToSentItems *bool          `json:"saveToSentItems,omitempty"`
}

type messagePayload struct {
	Subject       string       `json:"subject"`
	Body          itemBody     `json:"body"`
	ToRecipients  []Recipient  `json:"toRecipients"`
	CcRecipients  []Recipient  `json:"ccRecipients,omitempty"`
	BccRecipients []Recipient  `json:"bccRecipients,omitempty"`
	Importance    string       `json:"importance"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// SendMail posts msg to /users/{sender}/sendMail. Attachments that fail to
// build are logged and dropped; the message is still sent without them.
func (c *Client) SendMail(ctx context.Context, msg Message) (SendOutcome, error) {
	logger := c.logger

	if _, err := c.authToken(); err != nil {
		logger.Error("invalid access token, email cannot be sent")

		return SendNoToken, err
	}

	payload := c.buildMessage(msg)

	body, err := json.Marshal(sendMailRequest{
		Message:         payload,
		SaveToSentItems: saveFlag(msg.SaveToSentItems),
	})
	if err != nil {
		return SendTransportError, fmt.Errorf("graph: encoding sendMail request: %w", err)
	}

	logger.Debug("sending email",
		slog.String("sender", msg.Sender),
		slog.Int("to", len(payload.ToRecipients)),
		slog.Int("attachments", len(payload.Attachments)),
	)

	resp, err := c.Do(ctx, http.MethodPost, "/users/"+url.PathEscape(msg.Sender)+"/sendMail", bytes.NewReader(body))
	if err != nil {
		var ge *GraphError
		if errors.As(err, &ge) {
			logger.Error("sending failed",
				slog.Int("status", ge.StatusCode),
				slog.String("body", ge.Message),
			)

			return SendHTTPError, err
		}

		if errors.Is(err, ErrNoToken) {
			return SendNoToken, err
		}

		logger.Error("sending failed", slog.String("error", err.Error()))

		return SendTransportError, err
	}
	defer resp.Body.Close()

	// 202 is the only success signal for sendMail.
	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort read for error message

		logger.Error("sending failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)

		return SendHTTPError, &GraphError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Header.Get("request-id"),
			Message:    string(respBody),
			Err:        ErrUnexpectedStatus,
		}
	}

	logger.Debug("sending successful")

	return SendOK, nil
}

func (c *Client) buildMessage(msg Message) messagePayload {
	logger := c.logger
	contentType := NormalizeContentType(msg.ContentType)

	payload := messagePayload{
		Subject:      msg.Subject,
		Body:         itemBody{ContentType: contentType, Content: msg.Body},
		ToRecipients: ParseRecipients(msg.To),
		Importance:   msg.Importance,
	}

	if cc := ParseRecipients(msg.Cc); len(cc) > 0 {
		payload.CcRecipients = cc
	}

	if bcc := ParseRecipients(msg.Bcc); len(bcc) > 0 {
		payload.BccRecipients = bcc
	}

	inline := false

	for i := range msg.Attachments {
		att, err := BuildAttachment(c.fsys, msg.Attachments[i])
		if err != nil {
			logger.Error("build attachment failed",
				slog.Int("index", i),
				slog.String("name", msg.Attachments[i].Name),
				slog.String("error", err.Error()),
			)

			continue
		}

		inline = inline || att.IsInline
		payload.Attachments = append(payload.Attachments, *att)
	}

	if inline && contentType != ContentTypeHTML {
		logger.Warn(`inline attachments present but body is not HTML; inline images require an HTML body with <img src="cid:contentId"> references`)
	}

	return payload
}

func saveFlag(v bool) *bool {
	if !v {
		return nil
	}

	return &v
}
