package notify

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
)

// Subject is the subject line of every operator notification.
const Subject = "Nouveau message de contact - Portfolio"

var bodyTemplate = template.Must(template.New("notification").Parse(
	`<h2>Nouveau message de contact</h2>` +
		`<p><strong>Nom :</strong> {{.Name}}</p>` +
		`<p><strong>Email :</strong> {{.Email}}</p>` +
		`<p><strong>Message :</strong></p>` +
		`<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 10px 0;">{{.Message}}</div>` +
		`<hr>` +
		`<p><small>Message envoyé depuis le formulaire de contact du portfolio</small></p>`,
))

// RenderHTML returns the HTML body for n. Every field is escaped; line breaks
// in the message become <br /> tags.
func RenderHTML(n Notification) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Name    string
		Email   string
		Message template.HTML
	}{
		Name:    n.Name,
		Email:   n.Email,
		Message: template.HTML(nl2br(html.EscapeString(n.Message))),
	})
	if err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}

// RenderText returns the plain-text alternative body for n.
func RenderText(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nouveau message de contact\n\nNom : %s\nEmail : %s\n\nMessage :\n%s\n", n.Name, n.Email, n.Message)
	return b.String()
}

var lineBreaks = strings.NewReplacer("\r\n", "<br />\r\n", "\n\r", "<br />\n\r", "\n", "<br />\n", "\r", "<br />\r")

func nl2br(s string) string {
	return lineBreaks.Replace(s)
}
