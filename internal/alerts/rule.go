package alerts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hostwatch/internal/metrics"
)

type RequestType string

const (
	RequestGet  RequestType = "get"
	RequestPost RequestType = "post"
)

type BodyFormat string

const (
	FormatJSON BodyFormat = "json"
	FormatForm BodyFormat = "x-www-form-urlencoded"
)

type Body struct {
	Format  BodyFormat `json:"format"`
	Payload string     `json:"payload"`
}

// Request is the outbound template fired when a rule triggers. URL and
// Body.Payload may embed a {metric} placeholder which is replaced with the
// triggering value at dispatch time.
type Request struct {
	Type RequestType `json:"request_type"`
	URL  string      `json:"url"`
	Body Body        `json:"body"`
}

// Rule is one persisted alert definition. Value holds the threshold as
// text and is parsed to float64 at evaluation time.
type Rule struct {
	ID       uuid.UUID     `json:"id"`
	MetricID string        `json:"metric_id"`
	Logic    metrics.Logic `json:"logic"`
	Value    string        `json:"value"`
	Request  Request       `json:"request"`
}

func (r Rule) String() string {
	return fmt.Sprintf("alert %s: %s %s %s, %s %s",
		r.ID, r.MetricID, r.Logic, r.Value, strings.ToUpper(string(r.Request.Type)), r.Request.URL)
}
