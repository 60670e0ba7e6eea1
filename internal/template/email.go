// Package template renders the HTML bodies of outbound auth mails.
//
// Supported variables:
//
//	{{user.name}}, {{code}}, {{expires_at}}, {{link}}
package template

import (
	"strings"
	"time"
)

const verificationBody = `
<h2>Welcome to EventBuddy, {{user.name}}!</h2>
<p>Enter this code to confirm your email address:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{code}}</p>
<p>Open <a href="{{link}}">EventBuddy</a> and enter the code there.</p>
<p>The code expires at {{expires_at}}.</p>
`

const recoveryBody = `
<h2>Password recovery</h2>
<p>Hi {{user.name}},</p>
<p>Use this code to reset your password:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{code}}</p>
<p>The code expires at {{expires_at}}. If you did not request a reset, ignore this mail.</p>
`

// VerificationEmail renders the signup/resend confirmation mail. The link
// points back at the site where the code is entered.
func VerificationEmail(name, code, link string, expiresAt time.Time) string {
	return render(verificationBody, name, code, link, expiresAt)
}

func RecoveryEmail(name, code string, expiresAt time.Time) string {
	return render(recoveryBody, name, code, "", expiresAt)
}

func render(body, name, code, link string, expiresAt time.Time) string {
	return strings.NewReplacer(
		"{{user.name}}", name,
		"{{code}}", code,
		"{{link}}", link,
		"{{expires_at}}", expiresAt.UTC().Format(time.RFC3339),
	).Replace(body)
}
