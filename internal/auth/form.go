package auth

import (
	"net/url"
	"strings"
)

// Field is one key/value pair of a form-urlencoded body.
type Field struct {
	Key   string
	Value string
}

// EncodeForm builds an application/x-www-form-urlencoded body, keeping the
// order of fields. Only values are escaped; keys are written verbatim, so
// they must not contain characters that need encoding.
func EncodeForm(fields []Field) string {
	var b strings.Builder

	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}

		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}

	return b.String()
}
