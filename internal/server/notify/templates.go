package notify

import (
	"html/template"
	texttemplate "text/template"
)

const (
	verificationSubject = "Confirm your email address"
	loginSubject        = "New sign-in to your account"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Confirm your registration</h2>
    <p>To finish signing up, press the button below:</p>
    <a href="{{.URL}}"
       style="display: inline-block; padding: 10px 20px;
              background-color: #4CAF50; color: white;
              text-decoration: none; border-radius: 5px;">
        Confirm email
    </a>
    <p>The link expires at {{.ExpiresAt}}.</p>
</body>
</html>
`))

var loginTmpl = texttemplate.Must(texttemplate.New("login").Parse(`Dear {{.Username}},

You have signed in successfully.

Sign-in time: {{.At}}

If this was not you, please contact support immediately.

Regards,
Support team
`))

type verificationData struct {
	URL       string
	ExpiresAt string
}

type loginData struct {
	Username string
	At       string
}
