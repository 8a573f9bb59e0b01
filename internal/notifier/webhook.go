package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hostwatch/internal/alerts"
)

// Placeholder is the token in a rule's url and payload that gets replaced
// with the triggering metric value.
const Placeholder = "{metric}"

// Webhook sends a single best-effort HTTP request per triggered rule.
// No retry and no response-body inspection; the exported client exists so
// tests can install a fake transport.
type Webhook struct {
	HTTP *http.Client
}

func NewWebhook() *Webhook {
	return &Webhook{HTTP: &http.Client{}}
}

// Send builds the rule's outbound request with every {metric} occurrence
// substituted by the triggering value and fires it.
func (w *Webhook) Send(ctx context.Context, req alerts.Request, value float64) error {
	text := FormatValue(value)
	target := strings.ReplaceAll(req.URL, Placeholder, text)

	switch req.Type {
	case alerts.RequestGet:
		return w.do(ctx, http.MethodGet, target, "", nil)
	case alerts.RequestPost:
		payload := strings.ReplaceAll(req.Body.Payload, Placeholder, text)
		switch req.Body.Format {
		case alerts.FormatJSON:
			// The payload travels as one JSON string value, not as
			// structured JSON.
			b, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			return w.do(ctx, http.MethodPost, target, "application/json", bytes.NewReader(b))
		case alerts.FormatForm:
			form := ParseFormPayload(payload)
			return w.do(ctx, http.MethodPost, target, "application/x-www-form-urlencoded",
				strings.NewReader(form.Encode()))
		default:
			return fmt.Errorf("unknown body format %q", req.Body.Format)
		}
	default:
		return fmt.Errorf("unknown request type %q", req.Type)
	}
}

func (w *Webhook) do(ctx context.Context, method, target, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := w.HTTP.Do(req)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// ParseFormPayload splits a payload on '&', then each pair on the first
// '=' only, so values may themselves contain '='.
func ParseFormPayload(payload string) url.Values {
	form := url.Values{}
	for _, pair := range strings.Split(payload, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		form.Set(key, value)
	}
	return form
}

// FormatValue renders a metric value the way it is substituted into
// webhook templates: integers without a decimal point.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
