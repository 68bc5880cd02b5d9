/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsCachedByName(t *testing.T) {
	a := NewLogger("TEST-CACHE")
	b := NewLogger("TEST-CACHE")
	assert.Same(t, a, b)
	assert.NotSame(t, a, NewLogger("TEST-OTHER"))
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"":        logrus.InfoLevel,
		" warn ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func newEntry(msg string, fields logrus.Fields) *logrus.Entry {
	entry := logrus.NewEntry(logrus.New())
	entry.Data = fields
	entry.Message = msg
	entry.Level = logrus.InfoLevel
	entry.Time = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return entry
}

func TestJSONLogFormatterLiftsAccessFields(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "API"}
	out, err := f.Format(newEntry("Request completed", logrus.Fields{
		"req_method":   "GET",
		"req_uri":      "/bakeries/1",
		"client_ip":    "127.0.0.1",
		"status_code":  200,
		"latency_time": "1.2ms",
		"error":        errors.New("boom"),
		"extra":        "x",
	}))
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "API", rec["model"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/bakeries/1", rec["path"])
	assert.Equal(t, "127.0.0.1", rec["client_ip"])
	assert.EqualValues(t, 200, rec["status_code"])
	assert.Equal(t, "1.2ms", rec["latency_time"])
	assert.Equal(t, "2025-01-02 03:04:05.000", rec["time"])

	fields, ok := rec["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "x", fields["extra"])
	assert.NotContains(t, fields, "req_uri")
}

func TestLog4jColorFormatterSortsFields(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10}
	out, err := f.Format(newEntry("connected", logrus.Fields{"type": "sqlite", "dbname": "app"}))
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasSuffix(line, "connected dbname=app type=sqlite\n"), line)
	assert.Contains(t, line, "DATABASE")
	assert.Contains(t, line, "2025-01-02 03:04:05.000")
}

func TestCallerLocation(t *testing.T) {
	assert.Equal(t, "api/server.go:42", callerLocation("/src/bakery/api/server.go", 42))
	assert.Equal(t, "main.go:7", callerLocation("main.go", 7))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "1.235ms", FormatLatency(1234567*time.Nanosecond))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("BAKERY_TEST_STR", "value")
	t.Setenv("BAKERY_TEST_INT", "42")
	t.Setenv("BAKERY_TEST_BAD_INT", "forty-two")
	t.Setenv("BAKERY_TEST_BOOL", "true")

	assert.Equal(t, "value", EnvDefaultString("BAKERY_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefaultString("BAKERY_TEST_UNSET", "def"))
	assert.Equal(t, 42, EnvDefaultInt("BAKERY_TEST_INT", 1))
	assert.Equal(t, 1, EnvDefaultInt("BAKERY_TEST_BAD_INT", 1))
	assert.True(t, EnvDefaultBool("BAKERY_TEST_BOOL", false))
	assert.False(t, EnvDefaultBool("BAKERY_TEST_UNSET", false))
}
