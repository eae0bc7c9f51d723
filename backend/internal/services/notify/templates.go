package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

var emailTemplate = template.Must(template.New("email").Parse(
	`<p>Hello {{.Name}},</p>` +
		`{{range .Paragraphs}}<p>{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>{{end}}` +
		`{{with .Link}}<p><a href="{{.}}">{{.}}</a></p>{{end}}` +
		`<p>The 3arida team</p>`,
))

// emailPolicy is the last pass over rendered mail.
var emailPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	return p
}()

type emailView struct {
	Name       string
	Paragraphs [][]string
	Link       string
}

func petitionStatusText(ev PetitionStatusChange) (string, string) {
	var title, body string
	switch ev.NewStatus {
	case enums.PetitionStatusApproved:
		title = fmt.Sprintf("Your petition %q was approved", ev.PetitionTitle)
		body = "Your petition is now live and can collect signatures."
	case enums.PetitionStatusRejected:
		title = fmt.Sprintf("Your petition %q was rejected", ev.PetitionTitle)
		body = "You can update the petition and resubmit it, or open an appeal."
	case enums.PetitionStatusPaused:
		title = fmt.Sprintf("Your petition %q was paused", ev.PetitionTitle)
		body = "Signature collection is paused. You can open an appeal if you disagree."
	case enums.PetitionStatusDeleted:
		title = fmt.Sprintf("Your petition %q was removed", ev.PetitionTitle)
		body = "The petition is no longer visible on the platform."
	default:
		title = fmt.Sprintf("Your petition %q changed status", ev.PetitionTitle)
		body = fmt.Sprintf("New status: %s.", ev.NewStatus)
	}

	if notes := strings.TrimSpace(ev.Notes); notes != "" {
		body += "\n\nModerator notes: " + notes
	}
	return title, body
}

func appealStatusText(ev AppealEvent) (string, string) {
	var title, body string
	switch ev.Status {
	case enums.AppealStatusInProgress:
		title = fmt.Sprintf("Your appeal for %q is being reviewed", ev.PetitionTitle)
		body = "A moderator picked up your appeal."
	case enums.AppealStatusResolved:
		title = fmt.Sprintf("Your appeal for %q was resolved", ev.PetitionTitle)
		body = "The moderation team resolved your appeal."
	case enums.AppealStatusRejected:
		title = fmt.Sprintf("Your appeal for %q was rejected", ev.PetitionTitle)
		body = "The moderation team upheld the original decision."
	default:
		title = fmt.Sprintf("Your appeal for %q changed status", ev.PetitionTitle)
		body = fmt.Sprintf("New status: %s.", ev.Status)
	}

	if reason := strings.TrimSpace(ev.Reason); reason != "" {
		body += "\n\nReason: " + reason
	}
	return title, body
}

// renderHTML lays out body as paragraphs split on blank lines. User text is
// escaped, so notes like "x<y" survive as text.
func renderHTML(name, body, link string) (string, error) {
	view := emailView{Name: name, Link: link}
	for _, para := range strings.Split(body, "\n\n") {
		view.Paragraphs = append(view.Paragraphs, strings.Split(para, "\n"))
	}

	var b strings.Builder
	if err := emailTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return emailPolicy.Sanitize(b.String()), nil
}
