package notify

import (
	"bytes"
	"errors"
	"text/template"
)

// DefaultTemplate renders one digest line per overdue schedule.
const DefaultTemplate = `[Maintenance Overdue] {{.Count}} schedule(s)
{{range .Schedules}}- {{.Name}} ({{.ScheduleID}}): {{.DaysOverdue}} day(s) overdue, due {{.NextDue}}
{{end}}`

// ScheduleLine is one overdue schedule in TemplateData.
type ScheduleLine struct {
	ScheduleID  string
	Name        string
	DaysOverdue int
	NextDue     string
}

// TemplateData provides fields for rendering a digest.
type TemplateData struct {
	Count       int
	GeneratedAt string
	Schedules   []ScheduleLine
}

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("overdue-digest").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("overdue template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
