// Package log builds the logrus logger used for diagnostics. Every logger
// carries a hook that masks sensitive fields (cookies, authorization
// headers, tokens) because probe diagnostics may include response headers.
package log

import (
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// MaskValue replaces sensitive field values.
const MaskValue = "***REDACTED***"

var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"session":             true,
	"session_id":          true,
}

var sensitiveKeywords = []string{"password", "secret", "token", "auth", "cookie", "credential"}

// New returns a text logger writing to w. verbose lowers the level to Debug.
func New(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	l.AddHook(RedactHook{})
	return l
}

// Discard returns a logger that drops everything. Used when callers pass
// no logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// RedactHook masks sensitive fields before an entry is formatted.
type RedactHook struct{}

// Levels implements logrus.Hook.
func (RedactHook) Levels() []logrus.Level { return logrus.AllLevels }

// Fire implements logrus.Hook.
func (RedactHook) Fire(e *logrus.Entry) error {
	for k, v := range e.Data {
		e.Data[k] = redact(k, v)
	}
	return nil
}

func redact(key string, v any) any {
	if IsSensitiveKey(key) {
		return MaskValue
	}
	switch val := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			if IsSensitiveKey(k) {
				s = MaskValue
			}
			out[k] = s
		}
		return out
	case http.Header:
		return redact(key, map[string][]string(val))
	case map[string][]string:
		out := make(map[string][]string, len(val))
		for k, s := range val {
			if IsSensitiveKey(k) {
				s = []string{MaskValue}
			}
			out[k] = s
		}
		return out
	}
	return v
}

// IsSensitiveKey reports whether a field or header name carries secrets.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if sensitiveKeys[k] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}
