// @title           Absensi API
// @version         1.0
// @description     Employee attendance: geofenced and face-verified check-in/out, leaves, settings.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import "absensi/internal/app"

func main() {
	app.Run()
}
