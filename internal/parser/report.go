package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dtp/internal/domain"
)

const payloadExcerptLimit = 200

// ErrMissingField is wrapped by ParseError when a required report field is absent
var ErrMissingField = errors.New("missing required field")

// ParseError reports a trailing payload that does not decode to a TestReport
type ParseError struct {
	Environment domain.Environment
	Payload     string // Excerpt of the candidate payload
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s report: %v (payload %q)", e.Environment, e.Err, e.Payload)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReportParser splits harness output at its last line break, forwards the
// leading debug text to the log sink and decodes the trailing line.
type ReportParser struct {
	logger *zap.Logger
}

// NewReportParser creates a new ReportParser writing debug output to logger
func NewReportParser(logger *zap.Logger) *ReportParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportParser{logger: logger}
}

// wireReport mirrors the payload with pointers so absent fields can be told apart from zero values
type wireReport struct {
	Total    *int           `json:"total"`
	Passed   *int           `json:"passed"`
	Failed   *int           `json:"failed"`
	Runtime  *float64       `json:"runtime"`
	Failures *[]wireFailure `json:"failures"`
}

// Harnesses may serialize actual/expected values as non-string JSON, those are kept as JSON text
type wireFailure struct {
	Name     json.RawMessage `json:"name"`
	Message  json.RawMessage `json:"message"`
	Source   json.RawMessage `json:"source"`
	Actual   json.RawMessage `json:"actual"`
	Expected json.RawMessage `json:"expected"`
}

// Parse decodes raw harness output. Everything before the last line break is
// logged verbatim, one entry per line. A trailing line break terminating the
// payload line is ignored.
func (p *ReportParser) Parse(env domain.Environment, raw string) (domain.TestReport, error) {
	debug, payload := Split(raw)
	if debug != "" {
		for _, line := range strings.Split(debug, "\n") {
			p.logger.Info(line, zap.String("environment", string(env)))
		}
	}

	report, err := decode(payload)
	if err != nil {
		return domain.TestReport{}, &ParseError{Environment: env, Payload: excerpt(payload), Err: err}
	}
	return report, nil
}

// Split separates the debug prefix from the candidate payload.
// Without any line break the whole text is the payload.
func Split(raw string) (debug, payload string) {
	raw = strings.TrimRight(raw, "\r\n")
	index := strings.LastIndexByte(raw, '\n')
	if index == -1 {
		return "", raw
	}
	return raw[:index], raw[index+1:]
}

func decode(payload string) (domain.TestReport, error) {
	var wire wireReport
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &wire); err != nil {
		return domain.TestReport{}, err
	}

	switch {
	case wire.Total == nil:
		return domain.TestReport{}, fmt.Errorf("%w: total", ErrMissingField)
	case wire.Passed == nil:
		return domain.TestReport{}, fmt.Errorf("%w: passed", ErrMissingField)
	case wire.Failed == nil:
		return domain.TestReport{}, fmt.Errorf("%w: failed", ErrMissingField)
	case wire.Runtime == nil:
		return domain.TestReport{}, fmt.Errorf("%w: runtime", ErrMissingField)
	case wire.Failures == nil:
		return domain.TestReport{}, fmt.Errorf("%w: failures", ErrMissingField)
	}
	if *wire.Total < 0 || *wire.Passed < 0 || *wire.Failed < 0 || *wire.Runtime < 0 {
		return domain.TestReport{}, fmt.Errorf("negative count in report")
	}

	report := domain.TestReport{
		Total:     *wire.Total,
		Passed:    *wire.Passed,
		Failed:    *wire.Failed,
		RuntimeMs: *wire.Runtime,
		Failures:  make([]domain.FailureDetail, 0, len(*wire.Failures)),
	}
	for i, f := range *wire.Failures {
		detail := domain.FailureDetail{}
		fields := []struct {
			name string
			raw  json.RawMessage
			dst  *string
		}{
			{"name", f.Name, &detail.Name},
			{"message", f.Message, &detail.Message},
			{"source", f.Source, &detail.Source},
			{"actual", f.Actual, &detail.Actual},
			{"expected", f.Expected, &detail.Expected},
		}
		for _, field := range fields {
			text, err := textValue(field.raw)
			if err != nil {
				return domain.TestReport{}, fmt.Errorf("failures[%d].%s: %w", i, field.name, err)
			}
			*field.dst = text
		}
		report.Failures = append(report.Failures, detail)
	}
	return report, nil
}

// textValue unquotes JSON strings and compacts any other JSON value; null and absent become empty
func textValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func excerpt(payload string) string {
	if len(payload) <= payloadExcerptLimit {
		return payload
	}
	return payload[:payloadExcerptLimit] + "..."
}

// EncodeReport writes a report in the harness payload format
func EncodeReport(report domain.TestReport) ([]byte, error) {
	failures := make([]domain.FailureDetail, 0, len(report.Failures))
	for _, f := range report.Failures {
		f.Resolved = false
		failures = append(failures, f)
	}
	report.Failures = failures
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
