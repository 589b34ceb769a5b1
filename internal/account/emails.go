package account

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

var (
	verifyTemplate = template.Must(template.New("verify").Parse(
		`<p>Welcome, {{.Username}}! Click <a href="{{.Link}}">here</a> to verify your email address.</p>`))
	resetTemplate = template.Must(template.New("reset").Parse(
		`<p>Click <a href="{{.Link}}">here</a> to reset your password. This link will expire in {{.Minutes}} minutes.</p>`))
)

type emailData struct {
	Username string
	Link     string
	Minutes  int
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// link builds base/path?token=token.
func link(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?" + url.Values{"token": {token}}.Encode()
}
