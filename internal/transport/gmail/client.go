// Package gmail reads unseen inbox mail and sends threaded replies through
// the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// unseenQuery selects the messages one polling cycle picks up.
const unseenQuery = "is:unread in:inbox"

// Client wraps a Gmail service for the authenticated user.
type Client struct {
	service *gmailapi.Service
	logger  *zap.Logger
}

// Config holds the OAuth file locations for the Gmail client.
type Config struct {
	CredentialsFile string
	TokenFile       string
	Logger          *zap.Logger
}

// NewClient builds a Gmail client from an OAuth client-secret file and a
// previously obtained token file.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tok, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{service: svc, logger: cfg.Logger}, nil
}

// FetchUnseen lists unread inbox messages, fetches each in full, and marks
// it read so the next cycle does not see it again. A message that fails to
// fetch is skipped and stays unread for a later retry.
func (c *Client) FetchUnseen(ctx context.Context) ([]domain.Message, error) {
	resp, err := c.service.Users.Messages.List("me").Q(unseenQuery).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}

	messages := make([]domain.Message, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		full, err := c.service.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			c.logger.Warn("fetch message failed, leaving unread",
				zap.String("message_id", ref.Id), zap.Error(err))
			continue
		}

		msg := parseMessage(full)
		if err := c.markRead(ctx, ref.Id); err != nil {
			c.logger.Warn("mark read failed", zap.String("message_id", ref.Id), zap.Error(err))
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// FetchAll pages through the whole mailbox up to max messages, for index
// rebuilds. max <= 0 means no cap.
func (c *Client) FetchAll(ctx context.Context, max int) ([]domain.Message, error) {
	var messages []domain.Message
	pageToken := ""

	for {
		req := c.service.Users.Messages.List("me").Q("in:inbox")
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("list inbox: %w", err)
		}

		for _, ref := range resp.Messages {
			if max > 0 && len(messages) >= max {
				return messages, nil
			}
			full, err := c.service.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
			if err != nil {
				c.logger.Warn("fetch message failed",
					zap.String("message_id", ref.Id), zap.Error(err))
				continue
			}
			messages = append(messages, parseMessage(full))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return messages, nil
		}
	}
}

// SendReply sends body as a threaded reply to orig: same thread, Re: subject,
// In-Reply-To and References carried over.
func (c *Client) SendReply(ctx context.Context, orig domain.Message, body string) error {
	raw := buildReplyRaw(orig, body)

	msg := &gmailapi.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}
	if orig.ThreadID != "" {
		msg.ThreadId = orig.ThreadID
	}

	if _, err := c.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send reply to %s: %w", orig.Sender, err)
	}
	return nil
}

func (c *Client) markRead(ctx context.Context, id string) error {
	_, err := c.service.Users.Messages.Modify("me", id, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	return err
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
