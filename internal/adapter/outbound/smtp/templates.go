package smtp

import "html/template"

const layout = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 6px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        {{template "content" .}}
        <p>Or copy and paste this link into your browser:</p>
        <p>{{.AcceptURL}}</p>
        <div class="footer">
            <p>If you were not expecting this invitation, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>
`

var projectInvitationTemplate = mustTemplate("project_invitation", `
        <h1>You've been invited to {{.TargetName}}</h1>
        <p>{{.InviterName}} invited you to collaborate on the {{.TargetKind}} <strong>{{.TargetName}}</strong>.</p>
        <p><a href="{{.AcceptURL}}" class="button">Accept Invitation</a></p>
`)

var signupInvitationTemplate = mustTemplate("signup_invitation", `
        <h1>Join {{.TargetName}}</h1>
        <p>{{.InviterName}} invited you to join the {{.TargetKind}} <strong>{{.TargetName}}</strong>.</p>
        <p>Create an account with this email address to accept the invitation.</p>
        <p><a href="{{.AcceptURL}}" class="button">Sign Up and Join</a></p>
`)

// mustTemplate parses content into the shared layout.
func mustTemplate(name, content string) *template.Template {
	t := template.Must(template.New(name).Parse(layout))
	template.Must(t.New("content").Parse(content))
	return t
}
