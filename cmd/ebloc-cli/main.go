package main

import (
	"ebloc-backend/cmd/ebloc-cli/cmd"
	"ebloc-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	cmd.Execute()
}
