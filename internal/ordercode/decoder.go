// Package ordercode decodes self-describing order codes of the form
// KYS-<base64url(JSON)> into the pricing parameters they carry.
package ordercode

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Prefix marks a code that embeds a pricing payload. Matching is case-sensitive.
const Prefix = "KYS-"

var (
	ErrNoPrefix     = errors.New("order code has no KYS- prefix")
	ErrEmptyPayload = errors.New("order code payload is empty")
	ErrBadBase64    = errors.New("order code payload is not valid base64")
	ErrBadJSON      = errors.New("order code payload is not a JSON object")
	ErrNoPackageID  = errors.New("order code payload has no numeric package id")
)

// Field names a payload value resolved through an alias table.
type Field string

const (
	FieldPackageID Field = "packageId"
	FieldDuration  Field = "duration"
	FieldDeadline  Field = "deadline"
	FieldOrderDate Field = "orderDate"
)

// Aliases lists, per field, the payload keys accepted for it in priority order.
var Aliases = map[Field][]string{
	FieldPackageID: {"pid", "packageId", "pkgId", "paket", "package", "pkg", "p"},
	FieldDuration:  {"dur", "durasi", "duration", "minutes", "minute", "min", "d"},
	FieldDeadline:  {"ddl", "deadline", "days", "day", "hari", "dl"},
	FieldOrderDate: {"ts", "orderDate", "order_date", "tanggalOrder", "tanggal_order", "od", "date", "tanggal"},
}

// Payload is the decoded content of a KYS code.
type Payload struct {
	PackageID float64        `json:"packageId"`
	Duration  float64        `json:"duration"` // minutes
	Deadline  float64        `json:"deadline"` // days
	OrderDate any            `json:"orderDate"`
	Raw       map[string]any `json:"raw"`
}

// PackageKey renders PackageID the way package ids are compared against the
// pricing document (2 -> "2", 2.5 -> "2.5").
func (p *Payload) PackageKey() string {
	return strconv.FormatFloat(p.PackageID, 'f', -1, 64)
}

// HasOrderDate reports whether OrderDate may replace the sheet's order date.
// Zero numbers, false and blank strings do not count.
func (p *Payload) HasOrderDate() bool {
	switch v := p.OrderDate.(type) {
	case nil:
		return false
	case bool:
		return v
	case json.Number, float64:
		f, ok := asFiniteNumber(v)
		return ok && f != 0
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// HasPrefix reports whether the trimmed code is a self-describing one.
func HasPrefix(code string) bool {
	return strings.HasPrefix(strings.TrimSpace(code), Prefix)
}

// Decode parses a KYS code. It never panics; every failure is reported as one
// of the Err* sentinels (possibly wrapped) together with a nil payload.
func Decode(code string) (*Payload, error) {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, Prefix) {
		return nil, ErrNoPrefix
	}
	encoded := strings.TrimSpace(trimmed[len(Prefix):])
	if encoded == "" {
		return nil, ErrEmptyPayload
	}

	raw, err := decodeBase64URL(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBase64, err)
	}
	obj, err := parseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}

	packageID, ok := firstPresent(obj, Aliases[FieldPackageID], asFiniteNumber)
	if !ok {
		return nil, ErrNoPackageID
	}
	duration, _ := firstPresent(obj, Aliases[FieldDuration], asFiniteNumber)
	deadline, _ := firstPresent(obj, Aliases[FieldDeadline], asFiniteNumber)
	orderDate, _ := firstPresent(obj, Aliases[FieldOrderDate], asNonEmpty)

	return &Payload{
		PackageID: packageID,
		Duration:  duration,
		Deadline:  deadline,
		OrderDate: orderDate,
		Raw:       obj,
	}, nil
}

func decodeBase64URL(payload string) ([]byte, error) {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(payload)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(normalized)
}

func parseObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("payload is null")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}

// firstPresent walks keys in order and returns the first value accepted by accept.
func firstPresent[T any](src map[string]any, keys []string, accept func(any) (T, bool)) (T, bool) {
	for _, key := range keys {
		value, ok := src[key]
		if !ok {
			continue
		}
		if v, ok := accept(value); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func asFiniteNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asNonEmpty(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if strings.TrimSpace(fmt.Sprint(value)) == "" {
		return nil, false
	}
	return value, true
}
