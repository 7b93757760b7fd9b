package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// parseMessage maps a full-format API message onto the pipeline's shape.
// References carries the original References header plus the message's own
// Message-Id, in that order, which is exactly the References header a reply
// must send.
func parseMessage(msg *gmailapi.Message) domain.Message {
	out := domain.Message{
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
	}
	if msg.Payload == nil {
		return out
	}

	var rfcID string
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			out.Subject = h.Value
		case "From":
			out.Sender = h.Value
		case "Message-Id", "Message-ID":
			rfcID = h.Value
		case "References":
			out.References = append(out.References, strings.Fields(h.Value)...)
		}
	}
	if rfcID != "" {
		out.References = append(out.References, rfcID)
	}

	out.Content = extractPlainText(msg.Payload)
	return out
}

// extractPlainText walks the MIME tree depth-first and returns the first
// text/plain part. Multipart containers keep their text in leaf parts.
func extractPlainText(part *gmailapi.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(data)
	}

	for _, p := range part.Parts {
		if text := extractPlainText(p); text != "" {
			return text
		}
	}
	return ""
}

// buildReplyRaw renders the RFC 822 reply to orig. The last References entry
// is the message being answered, so it becomes In-Reply-To.
func buildReplyRaw(orig domain.Message, body string) string {
	var sb strings.Builder

	sb.WriteString("To: " + orig.Sender + "\r\n")
	sb.WriteString("Subject: " + replySubject(orig.Subject) + "\r\n")
	if len(orig.References) > 0 {
		sb.WriteString("In-Reply-To: " + orig.References[len(orig.References)-1] + "\r\n")
		sb.WriteString("References: " + strings.Join(orig.References, " ") + "\r\n")
	}
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return sb.String()
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
