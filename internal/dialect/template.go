package dialect

import (
	"strings"
)

// Fragments maps placeholder names to rendered text. An empty string is a
// valid fragment; only an absent key counts as missing.
type Fragments map[string]string

type segment struct {
	text        string
	placeholder bool
	optional    bool
}

// Template is a statement skeleton with named placeholders. {name} must be
// supplied, {name?} is replaced by the empty string when absent, and {{ and
// }} produce literal braces.
type Template struct {
	Name    string
	dialect string
	source  string
	segs    []segment
}

// ParseTemplate parses text.
func ParseTemplate(name, text string) (*Template, error) {
	t := &Template{Name: name, source: text}
	var lit strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &TemplateError{Template: name, Offset: i, Reason: "unterminated placeholder"}
			}
			body := text[i+1 : i+1+end]
			optional := strings.HasSuffix(body, "?")
			body = strings.TrimSuffix(body, "?")
			if !validPlaceholder(body) {
				return nil, &TemplateError{Template: name, Offset: i, Reason: "invalid placeholder name " + body}
			}
			if lit.Len() > 0 {
				t.segs = append(t.segs, segment{text: lit.String()})
				lit.Reset()
			}
			t.segs = append(t.segs, segment{text: body, placeholder: true, optional: optional})
			i += end + 1
		case c == '}':
			return nil, &TemplateError{Template: name, Offset: i, Reason: "unmatched }"}
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.segs = append(t.segs, segment{text: lit.String()})
	}
	return t, nil
}

func validPlaceholder(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Source returns the unparsed template text.
func (t *Template) Source() string {
	return t.source
}

// Placeholders returns the placeholder names in order of appearance.
func (t *Template) Placeholders() []string {
	var names []string
	for _, s := range t.segs {
		if s.placeholder {
			names = append(names, s.text)
		}
	}
	return names
}

// Has reports whether the template references placeholder name.
func (t *Template) Has(name string) bool {
	for _, s := range t.segs {
		if s.placeholder && s.text == name {
			return true
		}
	}
	return false
}

// Execute substitutes f into the template. Fragments the template does not
// reference are ignored.
func (t *Template) Execute(f Fragments) (string, error) {
	var b strings.Builder
	for _, s := range t.segs {
		if !s.placeholder {
			b.WriteString(s.text)
			continue
		}
		v, ok := f[s.text]
		if !ok && !s.optional {
			return "", &MissingDialectTemplateError{Dialect: t.dialect, Template: t.Name, Placeholder: s.text}
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
