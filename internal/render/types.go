package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Request is the body of POST /render.
type Request struct {
	URL      string   `json:"url" binding:"required"`
	Metadata Metadata `json:"metadata"`
}

// Property is one <meta property content> pair.
type Property struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

// Metadata is an ordered list of meta properties. It decodes from a JSON
// object and keeps the object's key order, including repeated keys.
type Metadata []Property

// UnmarshalJSON decodes a JSON object (or null) into ordered pairs. String
// values are taken verbatim. Numbers are formatted the way a browser prints
// them, so 1e2 becomes "100" and 1.0 becomes "1". Booleans and null become
// their literal text. Nested objects and arrays are rejected.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("metadata: must be a JSON object")
	}

	var out Metadata
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		content, err := contentText(raw)
		if err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		out = append(out, Property{Property: key, Content: content})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	*m = out
	return nil
}

func contentText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("empty value")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("value must be a string, number, boolean or null")
	case 't', 'f', 'n':
		return string(raw), nil
	default:
		return formatNumber(string(raw))
	}
}

// formatNumber renders a JSON number like ECMAScript Number::toString:
// plain notation for decimal exponents in [-6, 21), exponent form otherwise.
func formatNumber(text string) (string, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("invalid number %s: %w", text, err)
	}
	switch {
	case math.IsInf(f, 1):
		return "Infinity", nil
	case math.IsInf(f, -1):
		return "-Infinity", nil
	case f == 0:
		return "0", nil
	}

	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}

	// Shortest round-trip digits and the position of the decimal point.
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, err := strconv.Atoi(exp)
	if err != nil {
		return "", fmt.Errorf("invalid number %s: %w", text, err)
	}
	k, n := len(digits), e+1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k), nil
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:], nil
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits, nil
	}

	out := digits[:1]
	if k > 1 {
		out += "." + digits[1:]
	}
	if n-1 >= 0 {
		return sign + out + "e+" + strconv.Itoa(n-1), nil
	}
	return sign + out + "e" + strconv.Itoa(n-1), nil
}

// Validate checks that the request targets an absolute http(s) URL.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid url %q: must be absolute", r.URL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("invalid url %q: unsupported scheme %q", r.URL, u.Scheme)
	}
}
