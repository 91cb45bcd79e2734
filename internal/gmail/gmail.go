// Package gmail implements the message source on the Gmail REST API. It
// applies a coarse server-side query before any client-side filtering and
// caps the number of messages fetched per run.
package gmail

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/jobtrail/internal/retry"
	"github.com/jonathan/jobtrail/internal/types"
)

const (
	// maxMessagesDefault caps messages per run to prevent runaway API calls.
	maxMessagesDefault = 500
	pageSize           = 100
)

// Credentials holds the OAuth material for a Gmail account.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Service lists and fetches messages from one Gmail account.
type Service struct {
	svc         *gmailapi.Service
	maxMessages int
	log         *logrus.Entry
}

// NewService builds a read-only Gmail client from refresh-token credentials.
func NewService(ctx context.Context, creds Credentials, maxMessages int) (*Service, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("incomplete Gmail credentials")
	}
	if maxMessages <= 0 {
		maxMessages = maxMessagesDefault
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmailapi.GmailReadonlyScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Service{
		svc:         svc,
		maxMessages: maxMessages,
		log:         logrus.WithField("component", "gmail"),
	}, nil
}

// ListCandidateMessages returns the ids of messages since the given time
// that match the server-side candidate query, newest pages first, capped at
// the per-run maximum.
func (s *Service) ListCandidateMessages(ctx context.Context, since time.Time) ([]string, error) {
	query := BuildQuery(since)
	s.log.WithField("query", query).Debug("listing candidate messages")

	var ids []string
	pageToken := ""
	for {
		var page *gmailapi.ListMessagesResponse
		err := retry.Do(ctx, func() error {
			var err error
			call := s.svc.Users.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			page, err = call.Do()
			return err
		}, retry.DefaultOptions(), "gmail.listMessages")
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range page.Messages {
			ids = append(ids, m.Id)
		}

		pageToken = page.NextPageToken
		if pageToken == "" || len(ids) >= s.maxMessages {
			break
		}
	}

	if len(ids) > s.maxMessages {
		ids = ids[:s.maxMessages]
	}
	return ids, nil
}

// GetMessage fetches the full message and converts it into the pipeline's
// message shape, preferring the text/plain body part.
func (s *Service) GetMessage(ctx context.Context, id string) (*types.EmailMessage, error) {
	var raw *gmailapi.Message
	err := retry.Do(ctx, func() error {
		var err error
		raw, err = s.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return err
	}, retry.DefaultOptions(), "gmail.getMessage")
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return convertMessage(raw), nil
}

// convertMessage maps a Gmail API message onto the domain message type.
func convertMessage(raw *gmailapi.Message) *types.EmailMessage {
	msg := &types.EmailMessage{
		ID:       raw.Id,
		ThreadID: raw.ThreadId,
		Subject:  "No Subject",
		From:     "Unknown",
		To:       "Unknown",
		Snippet:  raw.Snippet,
	}

	if raw.Payload != nil {
		for _, h := range raw.Payload.Headers {
			switch h.Name {
			case "Subject":
				msg.Subject = h.Value
			case "From":
				msg.From = h.Value
			case "To":
				msg.To = h.Value
			case "Date":
				if d, err := parseDate(h.Value); err == nil {
					msg.Date = d
				}
			}
		}
		msg.Body = extractBody(raw.Payload)
	}

	if msg.Date.IsZero() {
		if raw.InternalDate > 0 {
			msg.Date = time.UnixMilli(raw.InternalDate).UTC()
		} else {
			msg.Date = time.Now().UTC()
		}
	}
	return msg
}
