package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"sync"
)

// Personalizer renders a template into the body for one recipient.
// Implementations must not mutate the recipient.
type Personalizer interface {
	Personalize(tmpl string, r Recipient) (string, error)
}

// PersonalizerFunc adapts an ordinary function to the Personalizer interface.
type PersonalizerFunc func(tmpl string, r Recipient) (string, error)

// Personalize calls f(tmpl, r).
func (f PersonalizerFunc) Personalize(tmpl string, r Recipient) (string, error) {
	return f(tmpl, r)
}

// fieldToken matches {{FieldName}} with no surrounding whitespace.
var fieldToken = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// FieldPersonalizer replaces {{FieldName}} tokens with the matching value from
// Recipient.TemplateFields. Tokens naming an unknown field are left as-is and
// nil values render as an empty string. Substitution is a single pass, so
// values containing tokens are not expanded again.
type FieldPersonalizer struct{}

// Personalize never returns an error.
func (FieldPersonalizer) Personalize(tmpl string, r Recipient) (string, error) {
	fields := r.TemplateFields()
	out := fieldToken.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := fieldToken.FindStringSubmatch(token)[1]
		v, ok := fields[name]
		if !ok {
			return token
		}
		return stringify(v)
	})
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// HTMLTemplatePersonalizer renders templates with html/template, exposing the
// recipient's fields as the dot value ({{.Email}}, {{.Name}}). Field values are
// auto-escaped and a reference to an unknown field is an error.
type HTMLTemplatePersonalizer struct {
	mu     sync.Mutex
	parsed map[string]*template.Template
}

// NewHTMLTemplatePersonalizer returns a personalizer with an empty parse cache.
func NewHTMLTemplatePersonalizer() *HTMLTemplatePersonalizer {
	return &HTMLTemplatePersonalizer{parsed: make(map[string]*template.Template)}
}

// Personalize parses tmpl once per distinct template text and executes it.
func (p *HTMLTemplatePersonalizer) Personalize(tmpl string, r Recipient) (string, error) {
	t, err := p.lookup(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, r.TemplateFields()); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return buf.String(), nil
}

func (p *HTMLTemplatePersonalizer) lookup(tmpl string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parsed == nil {
		p.parsed = make(map[string]*template.Template)
	}
	if t, ok := p.parsed[tmpl]; ok {
		return t, nil
	}
	t, err := template.New("email").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	p.parsed[tmpl] = t
	return t, nil
}
