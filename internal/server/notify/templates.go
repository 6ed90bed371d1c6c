package notify

import (
	"bytes"
	"html/template"
)

// PasswordResetSubject is the subject line of the reset e-mail.
const PasswordResetSubject = "Your password reset token"

var passwordResetTmpl = template.Must(template.New("reset").Parse(`<div class="email" style="border: 1px solid black; padding: 20px; font-family: sans-serif; line-height: 2; font-size: 20px;">
  <h2>Hello There!</h2>
  <p>Your password reset token is here!</p>
  <p><a href="{{.Link}}">Click here to reset!</a></p>
  <p>The link is valid for one hour.</p>
</div>
`))

// PasswordResetBody renders the HTML body of the reset e-mail for link.
func PasswordResetBody(link string) (string, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
