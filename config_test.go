package spanlog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

const sampleConfig = `
case = "snake"
level = "number"
time = "epoch_seconds"
message_key = "msg"
span_join = "join"
span_join_sep = "/"
field_join = "join_all"
field_join_sep = "||"
min_level = "trace"
`

func TestParseConfig(t *testing.T) {
	logger, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	defer logger.Close()

	buf := &bytes.Buffer{}
	logger.Writer(buf).WithClock(clockz.NewFakeClockAt(stamp))

	ctx, outer := logger.StartSpan(context.Background(), "outer", String("tagList", "a"))
	innerCtx, inner := logger.StartSpan(ctx, "inner", String("tagList", "b"))
	logger.Trace(innerCtx, "configured")
	inner.End()
	outer.End()

	record := decodeLines(t, buf)[0]
	assert.Equal(t, "configured", record["msg"])
	assert.Equal(t, float64(10), record["level"])
	assert.Equal(t, strconv.FormatInt(stamp.Unix(), 10), record["time"])
	assert.Equal(t, "outer/inner", record["span"])
	assert.Equal(t, "a||b", record["tag_list"])
}

func TestParseConfigRFC3339Options(t *testing.T) {
	logger, err := Parse([]byte(`
time = "rfc3339"
time_precision = "seconds"
time_z = false
`))
	require.NoError(t, err)
	defer logger.Close()

	buf := &bytes.Buffer{}
	logger.Writer(buf).WithClock(clockz.NewFakeClockAt(stamp))
	logger.Info(context.Background(), "x")

	record := decodeLines(t, buf)[0]
	assert.Equal(t, "2022-12-31T00:15:08+00:00", record["time"])
}

func TestParseConfigRejectsUnknownValues(t *testing.T) {
	for _, bad := range []string{
		`case = "weird"`,
		`level = "shout"`,
		`time = "stardate"`,
		`timezone = "mars"`,
		`span_join = "braid"`,
		`field_join = "sometimes"`,
		`min_level = "loud"`,
	} {
		_, err := Parse([]byte(bad))
		assert.Error(t, err, "expected error for %s", bad)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spanlog.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	logger, err := Load(path)
	require.NoError(t, err)
	defer logger.Close()

	buf := &bytes.Buffer{}
	logger.Writer(buf).Time(TimeOff)
	logger.Info(context.Background(), "from file")

	record := decodeLines(t, buf)[0]
	assert.Equal(t, "from file", record["msg"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

// Each Logger owns an ID pool with a background refill goroutine; building
// from config must construct exactly one, or closed loggers leak.
func TestParsePrettyProfileClosesCleanly(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		logger, err := Parse([]byte("json = false\ncolor = false\n"))
		require.NoError(t, err)
		logger.Close()
	}

	// Give the refill goroutines time to exit.
	time.Sleep(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before {
		t.Errorf("Goroutine leak detected: %d -> %d", before, after)
	}
}

func TestParseConfigPrettyProfile(t *testing.T) {
	logger, err := Parse([]byte(`
json = false
color = false
time = "off"
module = false
file = false
`))
	require.NoError(t, err)
	defer logger.Close()

	buf := &bytes.Buffer{}
	logger.Writer(buf)
	logger.Info(context.Background(), "plain text")

	assert.Equal(t, "INFO plain text\n", buf.String())
}
