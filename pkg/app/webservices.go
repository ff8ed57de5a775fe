package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the receiver state as of the last symbol.
// output example:
//  {"State":"fine","Symbol":"1","Quality":507,"QualityMean":503.2,"QualityStdDev":4.1,"FineTune":-2,
//   "HoldOver":0,"Cursor":17,"Decoded":12,"Rejected":1,"LastTime":"22:33:00/2","Clock":"22:33:17/2",...}
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		return ctx.JSON(app.loop.Snapshot())
	}
}
