package app

import (
	"time"

	"github.com/womat/debug"
)

// publishCorrection sends a decoded minute frame to the mqtt broker.
// It is called from the tick loop and must not block.
func (app *App) publishCorrection(c Correction) {
	debug.TraceLog.Printf("prepare mqtt message %v", c.Time)
	app.mqtt.Publish(app.config.MQTT.Topic+"/time", true, c)
}

// publishStatus sends the receiver snapshot every interval until shutdown.
func (app *App) publishStatus() {
	defer close(app.statusDone)

	if app.config.MQTT.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.MQTT.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.shutdown:
			return
		case <-ticker.C:
			if app.sampler != nil {
				app.metrics.ObserveOverruns(app.sampler.Overruns())
			}
			app.mqtt.Publish(app.config.MQTT.Topic+"/status", false, app.loop.Snapshot())
		}
	}
}
