package logger

import (
	"fmt"
	"strings"
)

// Formatter renders a message template and its arguments into text.
// A returned error makes the facility fall back to the raw template.
type Formatter func(template string, args ...interface{}) (string, error)

// Sprintf is the default Formatter. Templates use fmt verbs. A template
// without arguments is returned untouched, so literal percent signs survive.
func Sprintf(template string, args ...interface{}) (string, error) {
	if len(args) == 0 {
		return template, nil
	}
	s := fmt.Sprintf(template, args...)
	// fmt reports verb/argument mismatches inline with "%!".
	if strings.Contains(s, "%!") && !strings.Contains(template, "%!") && !strings.Contains(fmt.Sprint(args...), "%!") {
		return s, fmt.Errorf("arguments do not match template (%s)", s)
	}
	return s, nil
}

// render never fails: formatter errors and panics become a marked copy of the template.
func render(f Formatter, template string, args []interface{}) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = formatFallback(template, fmt.Errorf("formatter panic: %v", r))
		}
	}()
	s, err := f(template, args...)
	if err != nil {
		return formatFallback(template, err)
	}
	return s
}

func formatFallback(template string, err error) string {
	return template + " [format error: " + err.Error() + "]"
}
