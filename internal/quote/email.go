package quote

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
)

var emailTemplate = template.Must(template.New("quote").Parse(`
<div style="font-family:Inter,Segoe UI,Arial,sans-serif;color:#1c2b44">
  <h2 style="margin:0 0 8px">Your iTARiX Quote</h2>
  <p style="margin:0 0 12px;color:#52647a">Reference: <b>{{.Quote.ID}}</b> &middot; {{.Sent}}</p>
  <table cellpadding="0" cellspacing="0" style="border-collapse:collapse;max-width:640px">
    <tr><td style="padding:6px 0"><b>Requested by</b></td><td>{{.Requester}}</td></tr>
    <tr><td style="padding:6px 0"><b>Service</b></td><td>{{.Quote.Service}}</td></tr>
    <tr><td style="padding:6px 0"><b>Tier</b></td><td>{{.Quote.Tier}}</td></tr>
    <tr><td style="padding:6px 0"><b>Type</b></td><td>{{.Quote.Subtype}}</td></tr>
    {{- if .ShowPages}}
    <tr><td style="padding:6px 0"><b>Pages</b></td><td>{{.Quote.Pages}}</td></tr>
    {{- end}}
    <tr><td style="padding:6px 0"><b>Features</b></td><td>{{.Features}}</td></tr>
    {{- if .Platforms}}
    <tr><td style="padding:6px 0"><b>Platforms</b></td><td>{{.Platforms}}</td></tr>
    {{- end}}
    <tr><td style="padding:6px 0"><b>Estimated Hours</b></td><td>{{.Quote.EstimatedHours}}</td></tr>
    <tr><td style="padding:6px 0"><b>Estimate</b></td><td><b>{{.Price}} &euro;</b></td></tr>
  </table>
  {{- if .Quote.Note}}
  <p style="margin:12px 0;color:#1c2b44"><b>Note from user:</b> {{.Quote.Note}}</p>
  {{- end}}
  <p style="margin:14px 0 0;color:#52647a">We'll contact you shortly to confirm the details.</p>
</div>`))

type emailView struct {
	Quote     models.Quote
	Requester string
	Sent      string
	ShowPages bool
	Features  string
	Platforms string
	Price     string
}

func renderEmail(q models.Quote, requester string, showPages bool) (string, error) {
	features := "-"
	if len(q.Features) > 0 {
		features = strings.Join(q.Features, ", ")
	}
	view := emailView{
		Quote:     q,
		Requester: requester,
		Sent:      q.CreatedAt.Format(time.RFC1123),
		ShowPages: showPages,
		Features:  features,
		Platforms: strings.Join(q.Platforms, ", "),
		Price:     thousands(q.Price),
	}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// thousands formats n with comma group separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
