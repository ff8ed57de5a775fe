package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dcf77rx/pkg/dcf77"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "dcf77rx.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Apply())

	assert.Equal(t, dcf77.NewConfig(dcf77.DefaultSamplingRate), c.Decoder.Receiver)
	assert.Equal(t, debug.Standard, c.Log.Flag)
	assert.Equal(t, os.Stderr, c.Log.File)
	assert.Equal(t, time.Minute, c.MQTT.Interval)
	assert.True(t, c.Emulation.Start.IsZero())
}

func TestLoadConfig(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeConfig(t, `
gpio:
  pin: 4
  driver: emulated
  terminator: none
  activelow: true
samplingrate: 1000
decoder:
  short: 12
  long: 22
  quality: 85
  fineoffset: 10
  holdoverlimit: 60
  holdoverpolicy: lenient
  parity: true
emulation:
  start: 2026-10-16T12:00:00+02:00
  noise: 0.01
mqtt:
  connection: tcp://127.0.0.1:1883
  interval: 30
  topic: home/dcf77
serial:
  port: /dev/ttyUSB0
  baud: 115200
log:
  file: stdout
`)
	c.Flag.LogLevel = "debug"

	require.NoError(t, c.LoadConfig())

	assert.Equal(t, GpioConfig{Pin: 4, Driver: "emulated", Terminator: "none", ActiveLow: true}, c.Gpio)
	r := c.Decoder.Receiver
	assert.Equal(t, 1000, r.Window)
	assert.Equal(t, 120, r.ShortZone)
	assert.Equal(t, 220, r.LongZone)
	assert.Equal(t, 850, r.MinQuality)
	assert.Equal(t, 10, r.FineOffset)
	assert.Equal(t, 8, r.FineTuneThreshold)
	assert.Equal(t, 60, r.HoldOverLimit)
	assert.Equal(t, dcf77.HoldOverLenient, r.HoldOverPolicy)
	assert.True(t, r.CheckParity)

	assert.Equal(t, 30*time.Second, c.MQTT.Interval)
	assert.Equal(t, "home/dcf77", c.MQTT.Topic)
	assert.Equal(t, SerialConfig{Port: "/dev/ttyUSB0", Baud: 115200}, c.Serial)
	assert.Equal(t, 0.01, c.Emulation.Noise)
	assert.Equal(t, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), c.Emulation.Start.UTC())
	assert.Equal(t, os.Stdout, c.Log.File)
	assert.Equal(t, debug.Warning|debug.Info|debug.Error|debug.Fatal|debug.Debug, c.Log.Flag)
	assert.True(t, c.Webserver.Webservices["metrics"])
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"zones", "decoder:\n  short: 30\n  long: 20\n", dcf77.ErrConfig},
		{"policy", "decoder:\n  holdoverpolicy: forever\n", dcf77.ErrConfig},
		{"rate", "samplingrate: 0\n", dcf77.ErrConfig},
		{"log level", "log:\n  flag: verbose\n", nil},
		{"emulation start", "emulation:\n  start: yesterday\n", nil},
		{"yaml", "gpio: [\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.Flag.ConfigFile = writeConfig(t, tt.content)
			err := c.LoadConfig()
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	err := c.LoadConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
