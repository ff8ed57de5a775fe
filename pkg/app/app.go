package app

import (
	"net/url"
	"time"

	"dcf77rx/pkg/app/config"
	"dcf77rx/pkg/console"
	"dcf77rx/pkg/metrics"
	"dcf77rx/pkg/mqtt"
	"dcf77rx/pkg/port"
	"dcf77rx/pkg/raspberry"
	"dcf77rx/pkg/recording"
	"dcf77rx/pkg/sampler"
	"dcf77rx/pkg/signal"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio is the handler to the gpio driver, pin the receiver line
	gpio raspberry.GPIO
	pin  raspberry.Pin

	// loop is the tick handler around the receiver
	loop *Loop
	// sampler calls the loop at the sampling rate
	sampler *sampler.Sampler

	// registry holds the prometheus collectors of this instance
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	console  *console.Console
	recorder *recording.File

	// shutdown signals application shutdown
	shutdown chan struct{}
	// statusDone is closed when the status publisher stopped
	statusDone chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		config:    config,
		urlParsed: u,

		web:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:     mqtt.New(),
		registry: reg,
		metrics:  metrics.New(reg),

		shutdown:   make(chan struct{}),
		statusDone: make(chan struct{}),
	}

	if a.loop, err = NewLoop(config.Decoder.Receiver, a.publishCorrection); err != nil {
		debug.ErrorLog.Printf("invalid decoder configuration: %v", err)
		return a, err
	}
	a.loop.metrics = a.metrics
	a.loop.wallClock = time.Now

	return a, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	app.sampler = sampler.New(app.line(), app.config.SamplingRate, app.loop.OnTick)

	go app.mqtt.Service()
	go app.runWebServer()
	go app.publishStatus()
	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if err = app.openGpio(); err != nil {
		return err
	}

	if app.pin, err = app.gpio.NewPin(app.config.Gpio.Pin, app.config.Gpio.Terminator); err != nil {
		debug.ErrorLog.Printf("can't open pin: %v", err)
		return err
	}

	if f := app.config.Record.File; f != "" {
		if app.recorder, err = recording.Create(f, app.config.SamplingRate); err != nil {
			debug.ErrorLog.Printf("can't create recording %v: %v", f, err)
			return err
		}
		app.loop.rec = app.recorder
		debug.InfoLog.Printf("recording samples to %v", f)
	}

	if p := app.config.Serial.Port; p != "" {
		if app.console, err = console.Open(p, app.config.Serial.Baud, app.loop.Console); err != nil {
			debug.ErrorLog.Printf("can't open serial console %v: %v", p, err)
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, mqtt.ClientID(MODULE)); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

func (app *App) openGpio() (err error) {
	if app.config.Gpio.Driver != raspberry.Emulated {
		if app.gpio, err = raspberry.Open(app.config.Gpio.Driver); err != nil {
			debug.ErrorLog.Printf("can't open gpio: %v", err)
		}
		return err
	}

	e := app.config.Emulation
	start := e.Start
	if start.IsZero() {
		start = time.Now()
	}
	g := signal.New(app.config.SamplingRate, start, e.Seed)
	g.Noise = e.Noise
	app.gpio = raspberry.NewEmulated(g, app.config.SamplingRate)
	debug.InfoLog.Printf("emulating broadcast from %v", g.Start())
	return nil
}

// line returns the sampled receiver line, true during the carrier reduction.
func (app *App) line() port.Reader {
	if app.config.Gpio.ActiveLow {
		return port.ActiveLow(app.pin)
	}
	return app.pin
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/dcf77rx.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close stops sampling first, so no tick handler touches a closed resource.
func (app *App) Close() error {
	if app.sampler != nil {
		_ = app.sampler.Close()
		debug.InfoLog.Printf("%d ticks sampled, %d caught up", app.sampler.Ticks(), app.sampler.Overruns())
	}
	if app.recorder != nil {
		if err := app.recorder.Close(); err != nil {
			debug.ErrorLog.Printf("closing recording: %v", err)
		}
	}
	if app.console != nil {
		_ = app.console.Close()
	}
	if app.shutdown != nil {
		close(app.shutdown)
		if app.sampler != nil {
			<-app.statusDone
		}
	}
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}
	if app.web != nil {
		_ = app.web.Shutdown()
	}
	if app.pin != nil {
		_ = app.pin.Close()
	}
	if app.gpio != nil {
		_ = app.gpio.Close()
	}
	return nil
}
