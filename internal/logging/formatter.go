package logging

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// TextFormatter renders `[LEVEL] [component] message key=value` lines.
type TextFormatter struct {
	DisableTimestamp bool
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(level))

	if component, ok := entry.Data["component"]; ok {
		fmt.Fprintf(&b, " [%v]", component)
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, entry.Data[key])
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
