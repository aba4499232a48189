package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Hello {{.Name}},</p>
<p>An account has been created for you. Sign in with the temporary password
below; you will be asked to choose your own password on first login.</p>
<p><b>Email:</b> {{.Email}}<br><b>Temporary password:</b> {{.Password}}</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hello {{.Name}},</p>
<p>A password reset was requested for your account. Use the token below to
set a new password. The token expires in one hour.</p>
<p><b>Reset token:</b> {{.Token}}</p>
<p>If you did not request this, ignore this message.</p>
`))

// WelcomeBody renders the new-account message.
func WelcomeBody(name, email, password string) (string, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct{ Name, Email, Password string }{name, email, password})
	if err != nil {
		return "", fmt.Errorf("error rendering welcome mail: %w", err)
	}
	return buf.String(), nil
}

// ResetBody renders the password-reset message.
func ResetBody(name, token string) (string, error) {
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, struct{ Name, Token string }{name, token})
	if err != nil {
		return "", fmt.Errorf("error rendering reset mail: %w", err)
	}
	return buf.String(), nil
}
