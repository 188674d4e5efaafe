// Package gmail implements the mailbox port on top of the Gmail API with
// the manual (pasted authorization code) OAuth consent flow.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

const labelUnread = "UNREAD"

// Client talks to the Gmail API for one mailbox. The OAuth token is kept
// on disk so a restart does not force re-authorization.
type Client struct {
	oauth     *oauth2.Config
	tokenPath string
	log       zerolog.Logger

	mu  sync.Mutex
	svc *gmailapi.Service
}

// New reads the OAuth client credentials file (the downloaded Google Cloud
// "installed app" JSON) and prepares a client. It does not require a token
// yet; the consent flow supplies one later.
func New(credentialsPath, tokenPath string, log zerolog.Logger) (*Client, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(raw, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	return &Client{oauth: cfg, tokenPath: tokenPath, log: log}, nil
}

// Authenticated reports whether a stored token can be loaded.
func (c *Client) Authenticated(ctx context.Context) bool {
	_, err := c.service(ctx)
	return err == nil
}

// AuthURL returns the consent URL the operator opens in a browser.
func (c *Client) AuthURL() (string, error) {
	if c.oauth == nil {
		return "", fmt.Errorf("gmail oauth config not loaded")
	}
	return c.oauth.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// Exchange trades the pasted authorization code for a token and persists it.
func (c *Client) Exchange(ctx context.Context, code string) error {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := c.saveToken(token); err != nil {
		return err
	}

	// Drop the cached service so the next call picks up the new token.
	c.mu.Lock()
	c.svc = nil
	c.mu.Unlock()

	c.log.Info().Msg("gmail token stored")
	return nil
}

// Search returns message summaries matching the Gmail search query.
func (c *Client) Search(ctx context.Context, query string, max int) ([]*domain.EmailMessage, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Users.Messages.List("me").Q(query).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail search: %w", err)
	}

	out := make([]*domain.EmailMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, &domain.EmailMessage{ID: m.Id})
	}
	return out, nil
}

// Message fetches one message with headers, plain-text body, and
// attachment metadata.
func (c *Client) Message(ctx context.Context, id string) (*domain.EmailMessage, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail get message: %w", err)
	}

	msg := &domain.EmailMessage{ID: raw.Id, Snippet: raw.Snippet}
	for _, label := range raw.LabelIds {
		if label == labelUnread {
			msg.Unread = true
			break
		}
	}
	if raw.Payload != nil {
		for _, h := range raw.Payload.Headers {
			switch h.Name {
			case "From":
				msg.From = h.Value
			case "Subject":
				msg.Subject = h.Value
			case "Date":
				msg.Date = h.Value
			}
		}
		collectParts(raw.Payload, msg)
	}
	return msg, nil
}

// collectParts walks the MIME tree picking up the plain-text body and
// attachment metadata.
func collectParts(part *gmailapi.MessagePart, msg *domain.EmailMessage) {
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		msg.Attachments = append(msg.Attachments, domain.EmailAttachment{
			ID:       part.Body.AttachmentId,
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     part.Body.Size,
		})
	} else if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" && msg.Body == "" {
		if data, err := decodeBody(part.Body.Data); err == nil {
			msg.Body = string(data)
		}
	}
	for _, child := range part.Parts {
		collectParts(child, msg)
	}
}

// Attachment downloads one attachment's content.
func (c *Client) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	body, err := svc.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail get attachment: %w", err)
	}
	return decodeBody(body.Data)
}

// MarkRead clears the unread label on the message.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Users.Messages.Modify("me", messageID, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{labelUnread},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail mark read: %w", err)
	}
	return nil
}

// service returns the cached API service, building it from the stored
// token on first use.
func (c *Client) service(ctx context.Context) (*gmailapi.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.svc != nil {
		return c.svc, nil
	}

	token, err := c.loadToken()
	if err != nil {
		return nil, domain.ErrMailboxNotConnected
	}

	httpClient := c.oauth.Client(context.Background(), token)
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(c.tokenPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	f, err := os.OpenFile(c.tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("store gmail token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// decodeBody handles Gmail's URL-safe base64, with and without padding.
func decodeBody(data string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(data)
}
