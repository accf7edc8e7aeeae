package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Kind]string{
	KindInvite:        "You're Invited to Join Us!",
	KindPasswordReset: "Portal Update - Set Your New Password",
}

// Templates renders the email bodies. It holds no business logic.
type Templates struct {
	set          *template.Template
	organization string
}

func NewTemplates(organization string) (*Templates, error) {
	set, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Templates{set: set, organization: organization}, nil
}

type templateData struct {
	Organization string
	Name         string
	FirstName    string
	Email        string
	ActionLink   template.URL
}

// Render produces the message for inv.
func (t *Templates) Render(inv Invitation) (Message, error) {
	subject, ok := subjects[inv.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown email kind %q", inv.Kind)
	}
	name := strings.TrimSpace(inv.DisplayName)
	data := templateData{
		Organization: t.organization,
		Name:         name,
		Email:        inv.Email,
		ActionLink:   template.URL(inv.ActionLink),
	}
	if fields := strings.Fields(name); len(fields) > 0 {
		data.FirstName = fields[0]
	}

	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, string(inv.Kind)+".html", data); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", inv.Kind, err)
	}
	return Message{To: inv.Email, Subject: subject, HTML: buf.String()}, nil
}
