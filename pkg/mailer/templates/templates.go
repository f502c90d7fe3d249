package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Known template names.
const (
	TemplateWelcome         = "welcome"
	TemplateTransferReceipt = "transfer_receipt"
)

var bodies = map[string]*template.Template{
	TemplateWelcome: template.Must(template.New(TemplateWelcome).Parse(`
<h2>Welcome to GridMarket, {{.Username}}!</h2>
<p>Your account is ready. You signed up as a <b>{{.Role}}</b> and received
{{.Credits}} starter credits.</p>
<p>Your invite code is <code>{{.InviteCode}}</code> — share it to grow your lineage.</p>
`)),
	TemplateTransferReceipt: template.Must(template.New(TemplateTransferReceipt).Parse(`
<h2>Transfer receipt</h2>
<p>You sent <b>{{printf "%.2f" .Amount}}</b> credits to <b>{{.Recipient}}</b>.</p>
{{if .EnergyUsed}}<p>1 energy unit was spent, so no fee was charged.</p>
{{else}}<p>A fee of {{printf "%.2f" .Fee}} was deducted.</p>{{end}}
`)),
}

var subjects = map[string]string{
	TemplateWelcome:         "Welcome to GridMarket",
	TemplateTransferReceipt: "Your GridMarket transfer receipt",
}

// RenderHTML renders a known template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	t, ok := bodies[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubjectFor returns the default subject for a known template.
func SubjectFor(name string) string {
	if s, ok := subjects[name]; ok {
		return s
	}
	return "GridMarket notification"
}
