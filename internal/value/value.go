// Package value formats Go values as query-language literals.
//
// A Formatter is configured with a Style describing the lexical rules of a
// backend: string quote character, null keyword, list separator and the
// function used for date-time literals. Strings are NFC-normalized before
// escaping so that canonically equivalent inputs render identically.
package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Style is the literal syntax of one dialect.
type Style struct {
	Quote      rune   // string delimiter, ' or "
	Null       string // null keyword
	ListSep    string // separator between list and map elements
	DateTime   string // function wrapping time literals, e.g. "datetime"
	TimeLayout string // layout for time.Time, RFC 3339 when empty
}

// Formatter renders values as literal text.
type Formatter interface {
	Format(v any) (string, error)
}

// FormatError reports a value that has no literal form.
type FormatError struct {
	Type   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot format %s value: %s", e.Type, e.Reason)
}

// New returns a Formatter using s.
func New(s Style) Formatter {
	if s.Quote == 0 {
		s.Quote = '\''
	}
	if s.Null == "" {
		s.Null = "NULL"
	}
	if s.ListSep == "" {
		s.ListSep = ", "
	}
	if s.TimeLayout == "" {
		s.TimeLayout = time.RFC3339Nano
	}
	return &formatter{style: s}
}

type formatter struct {
	style Style
}

func (f *formatter) Format(v any) (string, error) {
	var b strings.Builder
	if err := f.write(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (f *formatter) write(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString(f.style.Null)
		return nil
	case string:
		f.quote(b, x)
		return nil
	case []byte:
		f.quote(b, string(x))
		return nil
	case bool:
		b.WriteString(strconv.FormatBool(x))
		return nil
	case time.Time:
		f.timestamp(b, x)
		return nil
	case fmt.Stringer:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			b.WriteString(f.style.Null)
			return nil
		}
		f.quote(b, x.String())
		return nil
	}
	return f.reflect(b, reflect.ValueOf(v))
}

func (f *formatter) reflect(b *strings.Builder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString(f.style.Null)
			return nil
		}
		return f.write(b, rv.Elem().Interface())
	case reflect.String:
		f.quote(b, rv.String())
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if math.IsNaN(fl) || math.IsInf(fl, 0) {
			return &FormatError{Type: rv.Type().String(), Reason: "not a finite number"}
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		b.WriteString(strconv.FormatFloat(fl, 'g', -1, bits))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString("[]")
			return nil
		}
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(f.style.ListSep)
			}
			if err := f.write(b, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case reflect.Map:
		return f.mapLiteral(b, rv)
	default:
		return &FormatError{Type: rv.Type().String(), Reason: "unsupported kind " + rv.Kind().String()}
	}
	return nil
}

// mapLiteral writes {k: v, ...} with keys in sorted order.
func (f *formatter) mapLiteral(b *strings.Builder, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return &FormatError{Type: rv.Type().String(), Reason: "map keys must be strings"}
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if !IsIdentifier(k) {
			return &FormatError{Type: rv.Type().String(), Reason: fmt.Sprintf("map key %q is not an identifier", k)}
		}
		if i > 0 {
			b.WriteString(f.style.ListSep)
		}
		b.WriteString(k)
		b.WriteString(": ")
		kv := reflect.ValueOf(k).Convert(rv.Type().Key())
		if err := f.write(b, rv.MapIndex(kv).Interface()); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func (f *formatter) quote(b *strings.Builder, s string) {
	s = norm.NFC.String(s)
	q := f.style.Quote
	b.WriteRune(q)
	for _, r := range s {
		switch r {
		case q, '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(q)
}

func (f *formatter) timestamp(b *strings.Builder, t time.Time) {
	lit := t.Format(f.style.TimeLayout)
	if f.style.DateTime == "" {
		f.quote(b, lit)
		return
	}
	b.WriteString(f.style.DateTime)
	b.WriteByte('(')
	f.quote(b, lit)
	b.WriteByte(')')
}

// IsIdentifier reports whether s can be written unquoted as a name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
