package notifications

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/hhsystems1/Intakeform/internal/intake"
)

const intakeNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New website project intake</h3>
  <p><strong>Company:</strong> {{.CompanyName}}</p>
  <p><strong>Contact:</strong> {{.ContactName}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{.Phone}}</p>
  <p><strong>Main goal:</strong><br/>{{.WebsiteGoal}}</p>
  <p><strong>Target audience:</strong><br/>{{.TargetAudience}}</p>
  <p><strong>Features:</strong> {{.FeatureList}}</p>
  <p><strong>Brand colors:</strong>
    <span style="background:{{.PrimaryColor | css}};padding:0 12px">&nbsp;</span> {{.PrimaryColor}}
    <span style="background:{{.SecondaryColor | css}};padding:0 12px">&nbsp;</span> {{.SecondaryColor}}
  </p>
  <p><strong>Timeline:</strong> {{.Timeline}}</p>
  <p><strong>Budget:</strong> {{.Budget}}</p>
  <p><strong>Existing website:</strong> {{.ExistingWebsite}}</p>
  <p><strong>Competitors:</strong><br/>{{.Competitors}}</p>
  <p><strong>Reference images:</strong> {{.ImageCount}}{{if .ImageNames}} ({{join .ImageNames}}){{end}}</p>
  <p><strong>Additional information:</strong><br/>{{.AdditionalInfo}}</p>
</body>
</html>`

const intakeConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.ContactName}},</p>
  <p>Thanks for telling us about {{.CompanyName}}. We received your website project intake and will get back to you shortly.</p>
  <ul>
    <li>Main goal: {{.WebsiteGoal}}</li>
    <li>Features: {{.FeatureList}}</li>
    <li>Timeline: {{.Timeline}}</li>
    <li>Budget: {{.Budget}}</li>
  </ul>
  <p>Thank you.</p>
</body>
</html>`

var templateFuncs = template.FuncMap{
	"css": func(s string) template.CSS {
		if !intake.IsHexColor(s) {
			return ""
		}
		return template.CSS(s)
	},
	"join": func(names []string) string {
		return strings.Join(names, ", ")
	},
}

var intakeNotificationTmpl = template.Must(template.New("intake_notification").Funcs(templateFuncs).Parse(intakeNotificationTemplate))
var intakeConfirmationTmpl = template.Must(template.New("intake_confirmation").Parse(intakeConfirmationTemplate))

func buildIntakeNotificationHTML(payload intake.Payload) (string, error) {
	var buf bytes.Buffer
	if err := intakeNotificationTmpl.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildIntakeConfirmationHTML(payload intake.Payload) (string, error) {
	if payload.ContactName == "" {
		payload.ContactName = payload.CompanyName
	}
	var buf bytes.Buffer
	if err := intakeConfirmationTmpl.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
