package codec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/lcd"
	"github.com/reoring/lcd/codec"
)

func TestTimeRFC3339_Basic(t *testing.T) {
	c := codec.TimeRFC3339()

	in := "2025-01-01T00:00:00Z"
	got, err := c.PostLoad(in)
	require.NoError(t, err)
	assert.True(t, got.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	out, err := c.PreDump(got)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTimeRFC3339_NormalizesToUTC(t *testing.T) {
	c := codec.TimeRFC3339()
	got, err := c.PostLoad("2025-01-01T09:00:00.500+09:00")
	require.NoError(t, err)
	out, err := c.PreDump(got)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00.5Z", out)
}

func TestTimeRFC3339_Rejects(t *testing.T) {
	c := codec.TimeRFC3339()
	_, err := c.PostLoad("yesterday")
	assert.Error(t, err)
	_, err = c.PostLoad(42)
	assert.Error(t, err)
}

func TestDate_DefaultLayout(t *testing.T) {
	c := codec.Date("")
	got, err := c.PostLoad("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
	out, err := c.PreDump(got)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", out)

	_, err = c.PostLoad("2023-02-29")
	assert.Error(t, err)
}

func TestIdentityAndLookup(t *testing.T) {
	v, err := codec.Identity().PostLoad("x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	c, ok := codec.Lookup("date", "02/01/2006")
	require.True(t, ok)
	got, err := c.PostLoad("31/12/2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.(time.Time).Year())

	_, ok = codec.Lookup("base64", "")
	assert.False(t, ok)
}

func TestCodec_FieldRoundTrip(t *testing.T) {
	ctx := context.Background()
	ev := lcd.Struct("Event").
		Field("at", lcd.Time().Codec(codec.TimeRFC3339())).Required().
		Field("day", lcd.Time().Codec(codec.Date(""))).
		MustBuild()

	raw := map[string]any{"at": "2025-03-04T05:06:07Z", "day": "2025-03-04"}
	inst, err := ev.Verify(ctx, raw)
	require.NoError(t, err)

	at, ok := inst.Time("at")
	require.True(t, ok)
	assert.Equal(t, 5, at.Hour())

	out, err := inst.Dump(ctx)
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	_, err = ev.Verify(ctx, map[string]any{"at": "nope"})
	iss, ok := lcd.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/at", iss[0].Path)
	assert.Equal(t, lcd.CodeInvalidFormat, iss[0].Code)
}
