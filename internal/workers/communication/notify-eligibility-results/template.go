package notifyeligibilityresults

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	"text/template"
)

const subjectTemplate = `{{if .Summaries}}You are eligible for {{len .Summaries}} exam{{if gt (len .Summaries) 1}}s{{end}}{{else}}Your exam eligibility results{{end}}`

const textTemplate = `Hello {{.Name}},

{{if .Summaries -}}
Based on your profile you are eligible for the following exams:
{{range .Summaries}}
- {{.ExamLabel}} ({{.ExamCode}}): {{join .Divisions}}
{{- end}}
{{- else -}}
Based on your profile we did not find an exam you are currently eligible for.
{{- end}}

Reference: {{.ScanID}}
`

const htmlTemplate = `<p>Hello {{.Name}},</p>
{{if .Summaries -}}
<p>Based on your profile you are eligible for the following exams:</p>
<ul>
{{- range .Summaries}}
<li><strong>{{.ExamLabel}}</strong> ({{.ExamCode}}): {{join .Divisions}}</li>
{{- end}}
</ul>
{{- else -}}
<p>Based on your profile we did not find an exam you are currently eligible for.</p>
{{- end}}
<p>Reference: {{.ScanID}}</p>
`

var funcs = map[string]interface{}{
	"join": func(divisions []string) string { return strings.Join(divisions, ", ") },
}

var (
	subjectTmpl = template.Must(template.New("subject").Parse(subjectTemplate))
	textTmpl    = template.Must(template.New("text").Funcs(funcs).Parse(textTemplate))
	htmlTmpl    = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(htmlTemplate))
)

type message struct {
	Subject string
	Text    string
	HTML    string
}

func renderMessage(input *Input) (*message, error) {
	data := struct {
		*Input
		Name string
	}{Input: input, Name: input.CandidateName}
	if data.Name == "" {
		data.Name = "candidate"
	}

	var subject, text, html bytes.Buffer
	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return nil, err
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, err
	}
	return &message{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}
