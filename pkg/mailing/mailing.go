package mailing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Message is a mail composed by the administrator. Body is Markdown.
type Message struct {
	Subject string
	Body    string
}

// Rendered is a Message ready to be sent, with an HTML part and its plain text alternative.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Raw HTML in the body is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func Render(msg Message) (Rendered, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(msg.Body), &buf); err != nil {
		return Rendered{}, fmt.Errorf("failed to render markdown: %w", err)
	}
	return Rendered{
		Subject: strings.TrimSpace(msg.Subject),
		Text:    msg.Body,
		HTML:    buf.String(),
	}, nil
}

// DefaultDraft is the invitation offered when the mail form is opened.
func DefaultDraft(eventDate string, cancelled bool, signUpUrl string) Message {
	if cancelled {
		return Message{
			Subject: "Brunch am " + eventDate + " fällt aus",
			Body: "Hallo zusammen,\n\n" +
				"der Brunch am **" + eventDate + "** fällt leider aus.\n\n" +
				"Viele Grüße",
		}
	}
	return Message{
		Subject: "Einladung zum Brunch am " + eventDate,
		Body: "Hallo zusammen,\n\n" +
			"unser nächster Frühstücks-Brunch findet am **" + eventDate + "** statt.\n" +
			"Bitte meldet euch bis zwei Tage vorher an und tragt ein, was ihr mitbringt:\n" +
			"[" + signUpUrl + "](" + signUpUrl + ")\n\n" +
			"Viele Grüße",
	}
}
