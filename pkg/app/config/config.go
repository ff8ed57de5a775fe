package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"dcf77rx/pkg/dcf77"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Flag         FlagConfig      `yaml:"-"`
	Gpio         GpioConfig      `yaml:"gpio"`
	SamplingRate int             `yaml:"samplingrate"`
	Decoder      DecoderConfig   `yaml:"decoder"`
	Emulation    EmulationConfig `yaml:"emulation"`
	Webserver    WebserverConfig `yaml:"webserver"`
	MQTT         MQTTConfig      `yaml:"mqtt"`
	Serial       SerialConfig    `yaml:"serial"`
	Record       RecordConfig    `yaml:"record"`
	Log          LogConfig       `yaml:"log"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	ConfigFile string
	LogLevel   string
}

// GpioConfig defines the input line of the receiver module.
type GpioConfig struct {
	Pin int `yaml:"pin"`
	// Driver is gpiomem, gpiod or emulated.
	Driver string `yaml:"driver"`
	// Terminator is pullup, pulldown or none.
	Terminator string `yaml:"terminator"`
	// ActiveLow is set if the module pulls the line low during the carrier reduction.
	ActiveLow bool `yaml:"activelow"`
}

// DecoderConfig defines the decoder constants. Zones are percent of the symbol window.
type DecoderConfig struct {
	Short             int    `yaml:"short"`
	Long              int    `yaml:"long"`
	Quality           int    `yaml:"quality"`
	FineOffset        int    `yaml:"fineoffset"`
	FineTuneThreshold int    `yaml:"finetunethreshold"`
	FineTuneShift     int    `yaml:"finetuneshift"`
	HoldOverLimit     int    `yaml:"holdoverlimit"`
	HoldOverPolicy    string `yaml:"holdoverpolicy"`
	Parity            bool   `yaml:"parity"`

	// Receiver is derived from the values above by LoadConfig.
	Receiver dcf77.Config `yaml:"-"`
}

// EmulationConfig defines the synthetic broadcast of the emulated driver.
type EmulationConfig struct {
	// StartString is the broadcast time at program start (RFC3339), empty for the system time.
	StartString string    `yaml:"start"`
	Start       time.Time `yaml:"-"`
	Noise       float64   `yaml:"noise"`
	Seed        int64     `yaml:"seed"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection  string        `yaml:"connection"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	Topic       string        `yaml:"topic"`
}

// SerialConfig defines the serial diagnostic console, an empty port disables it.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// RecordConfig defines the recording of the raw samples, an empty file disables it.
type RecordConfig struct {
	File string `yaml:"file"`
}

// LogConfig defines the struct of the debug configuration and configuration file
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		Gpio: GpioConfig{
			Pin:        17,
			Driver:     "gpiod",
			Terminator: "pullup",
		},
		SamplingRate: dcf77.DefaultSamplingRate,
		Decoder: DecoderConfig{
			Short:             10,
			Long:              20,
			Quality:           90,
			FineTuneThreshold: 8,
			FineTuneShift:     1,
			HoldOverLimit:     300,
			HoldOverPolicy:    "strict",
		},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection:  "",
			IntervalInt: 60,
			Topic:       "dcf77rx",
		},
		Serial: SerialConfig{Baud: 9600},
	}
}

// LoadConfig reads the config file and applies the command line flags.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}
	return c.Apply()
}

// Apply derives the runtime values after the config file was read.
func (c *Config) Apply() error {
	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to open log file %q: %w", c.Log.FileString, err)
	}

	c.MQTT.Interval = time.Duration(c.MQTT.IntervalInt) * time.Second

	if c.Emulation.StartString != "" {
		t, err := time.Parse(time.RFC3339, c.Emulation.StartString)
		if err != nil {
			return fmt.Errorf("emulation start %q: %w", c.Emulation.StartString, err)
		}
		c.Emulation.Start = t
	}

	r, err := c.Decoder.ReceiverConfig(c.SamplingRate)
	if err != nil {
		return err
	}
	c.Decoder.Receiver = r
	return nil
}

// ReceiverConfig returns the decoder constants for the given sampling rate.
func (d DecoderConfig) ReceiverConfig(rate int) (dcf77.Config, error) {
	r := dcf77.NewConfig(rate)
	r.SetZones(d.Short, d.Long, d.Quality)
	if d.FineOffset > 0 {
		r.FineOffset = d.FineOffset
	}
	r.FineTuneThreshold = d.FineTuneThreshold
	r.FineTuneShift = d.FineTuneShift
	r.HoldOverLimit = d.HoldOverLimit
	r.CheckParity = d.Parity

	p, err := dcf77.ParseHoldOverPolicy(d.HoldOverPolicy)
	if err != nil {
		return r, err
	}
	r.HoldOverPolicy = p

	return r, r.Validate()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	return decoder.Decode(c)
}

func (c *Config) setLogConfig() (err error) {
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	default:
		return fmt.Errorf("unknown log level %q", c.Log.FlagString)
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
