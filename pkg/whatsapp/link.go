package whatsapp

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrNotConfigured = errors.New("whatsapp number or message template is not configured")
	ErrInvalidNumber = errors.New("whatsapp number has no digits")
)

var (
	encodedNewline = regexp.MustCompile(`(?i)%0A`)
	nonDigits      = regexp.MustCompile(`[^\d]`)
)

// componentEscaper undoes the QueryEscape choices that differ from
// JavaScript's encodeURIComponent.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// BackupFields fill the {{judul}}, {{code_projek}} and {{code_order}}
// placeholders of a backup request template.
type BackupFields struct {
	Title       string
	ProjectCode string
	OrderCode   string
}

func placeholder(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\{\{\s*` + name + `\s*\}\}`)
}

var (
	titlePlaceholder       = placeholder("judul")
	projectCodePlaceholder = placeholder("code_projek")
	orderCodePlaceholder   = placeholder("code_order")
)

// SanitizeNumber strips everything but digits.
func SanitizeNumber(number string) string {
	return nonDigits.ReplaceAllString(strings.TrimSpace(number), "")
}

// RenderBackupMessage expands a template: a literal %0A becomes a newline and
// placeholders are replaced case-insensitively. Blank fields render as "-".
func RenderBackupMessage(template string, fields BackupFields) string {
	msg := encodedNewline.ReplaceAllString(strings.TrimSpace(template), "\n")
	msg = titlePlaceholder.ReplaceAllLiteralString(msg, orDash(fields.Title))
	msg = projectCodePlaceholder.ReplaceAllLiteralString(msg, orDash(fields.ProjectCode))
	msg = orderCodePlaceholder.ReplaceAllLiteralString(msg, orDash(fields.OrderCode))
	return msg
}

// ChatURL builds a wa.me link that opens a chat with text prefilled.
func ChatURL(number, template string, fields BackupFields) (string, error) {
	if strings.TrimSpace(number) == "" || strings.TrimSpace(template) == "" {
		return "", ErrNotConfigured
	}
	digits := SanitizeNumber(number)
	if digits == "" {
		return "", ErrInvalidNumber
	}
	message := RenderBackupMessage(template, fields)
	return "https://wa.me/" + digits + "?text=" + componentEscaper.Replace(url.QueryEscape(message)), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
