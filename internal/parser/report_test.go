package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dtp/internal/domain"
)

func newObservedParser() (*ReportParser, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewReportParser(zap.New(core)), logs
}

func TestReportParser_Parse(t *testing.T) {
	t.Run("debug lines before payload", func(t *testing.T) {
		p, logs := newObservedParser()
		raw := "debug line 1\ndebug line 2\n{\"total\":3,\"passed\":3,\"failed\":0,\"runtime\":12,\"failures\":[]}"

		report, err := p.Parse(domain.EnvironmentHeadless, raw)
		require.NoError(t, err)
		assert.Equal(t, domain.TestReport{Total: 3, Passed: 3, Failed: 0, RuntimeMs: 12, Failures: []domain.FailureDetail{}}, report)

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "debug line 1", entries[0].Message)
		assert.Equal(t, "debug line 2", entries[1].Message)
		assert.Equal(t, "headless", entries[0].ContextMap()["environment"])
	})

	t.Run("payload only", func(t *testing.T) {
		p, logs := newObservedParser()
		report, err := p.Parse(domain.EnvironmentBrowser, `{"total":1,"passed":0,"failed":1,"runtime":4.5,"failures":[{"name":"a","source":"s","actual":"1","expected":"2"}]}`)
		require.NoError(t, err)
		assert.Equal(t, 0, logs.Len())
		assert.Equal(t, 4.5, report.RuntimeMs)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "", report.Failures[0].Message)
	})

	t.Run("N debug lines", func(t *testing.T) {
		for _, n := range []int{1, 3, 10} {
			p, logs := newObservedParser()
			var b strings.Builder
			for i := 0; i < n; i++ {
				b.WriteString("log output\n")
			}
			b.WriteString(`{"total":0,"passed":0,"failed":0,"runtime":0,"failures":[]}`)

			_, err := p.Parse(domain.EnvironmentHeadless, b.String())
			require.NoError(t, err)
			assert.Equal(t, n, logs.FilterMessage("log output").Len())
		}
	})

	t.Run("trailing line break after payload", func(t *testing.T) {
		p, logs := newObservedParser()
		report, err := p.Parse(domain.EnvironmentHeadless, "dbg\r\n{\"total\":2,\"passed\":2,\"failed\":0,\"runtime\":1,\"failures\":[]}\n")
		require.NoError(t, err)
		assert.Equal(t, 2, report.Total)
		require.Equal(t, 1, logs.Len())
		// Debug text is forwarded untouched, carriage returns included
		assert.Equal(t, "dbg\r", logs.All()[0].Message)
	})

	t.Run("debug lines are forwarded verbatim", func(t *testing.T) {
		p, logs := newObservedParser()
		_, err := p.Parse(domain.EnvironmentBrowser, "  indented\t\r\n\n{\"total\":0,\"passed\":0,\"failed\":0,\"runtime\":0,\"failures\":[]}")
		require.NoError(t, err)
		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "  indented\t\r", entries[0].Message)
		assert.Equal(t, "", entries[1].Message)
	})

	t.Run("non-string actual and expected", func(t *testing.T) {
		p, _ := newObservedParser()
		report, err := p.Parse(domain.EnvironmentHeadless, `{"total":1,"passed":0,"failed":1,"runtime":1,"failures":[{"name":"n","message":null,"source":"at x","actual":{"a": 1},"expected":[1, 2]}]}`)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, report.Failures[0].Actual)
		assert.Equal(t, `[1,2]`, report.Failures[0].Expected)
	})
}

func TestReportParser_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty output", raw: ""},
		{name: "plain text", raw: "Error: cannot find module"},
		{name: "debug then garbage", raw: "line\nnot json"},
		{name: "missing failures", raw: `{"total":1,"passed":1,"failed":0,"runtime":1}`},
		{name: "missing total", raw: `{"passed":1,"failed":0,"runtime":1,"failures":[]}`},
		{name: "null payload", raw: "null"},
		{name: "array payload", raw: "[]"},
		{name: "negative count", raw: `{"total":1,"passed":2,"failed":-1,"runtime":1,"failures":[]}`},
		{name: "fractional count", raw: `{"total":1.5,"passed":1,"failed":0,"runtime":1,"failures":[]}`},
		{name: "trailing garbage", raw: `{"total":0,"passed":0,"failed":0,"runtime":0,"failures":[]} x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newObservedParser()
			_, err := p.Parse(domain.EnvironmentBrowser, tt.raw)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, domain.EnvironmentBrowser, parseErr.Environment)
		})
	}

	t.Run("missing field is identifiable", func(t *testing.T) {
		p, _ := newObservedParser()
		_, err := p.Parse(domain.EnvironmentBrowser, `{"total":1,"passed":1,"failed":0,"failures":[]}`)
		assert.ErrorIs(t, err, ErrMissingField)
	})
}

func TestEncodeReport_RoundTrip(t *testing.T) {
	reports := []domain.TestReport{
		{Total: 0, Passed: 0, Failed: 0, RuntimeMs: 0, Failures: []domain.FailureDetail{}},
		{Total: 3, Passed: 3, Failed: 0, RuntimeMs: 12, Failures: []domain.FailureDetail{}},
		{
			Total: 5, Passed: 3, Failed: 2, RuntimeMs: 1234.5,
			Failures: []domain.FailureDetail{
				{Name: "minify: comments", Message: "should drop", Source: "at tests/minifier.js:10", Actual: "<p>", Expected: "<p></p>"},
				{Name: "minify: \"quotes\"", Source: "at tests/minifier.js:42\n  at run", Actual: "a\nb", Expected: ""},
			},
		},
	}

	for _, report := range reports {
		data, err := EncodeReport(report)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "\n")

		p, _ := newObservedParser()
		decoded, err := p.Parse(domain.EnvironmentHeadless, string(data))
		require.NoError(t, err)
		assert.Equal(t, report, decoded)
	}
}

func TestEncodeReport_NilFailures(t *testing.T) {
	data, err := EncodeReport(domain.TestReport{Total: 1, Passed: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"failures":[]`)
}

func TestSplit(t *testing.T) {
	debug, payload := Split("a\nb\n{}")
	assert.Equal(t, "a\nb", debug)
	assert.Equal(t, "{}", payload)

	debug, payload = Split("{}")
	assert.Equal(t, "", debug)
	assert.Equal(t, "{}", payload)
}
