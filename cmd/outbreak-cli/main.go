package main

import (
	"outbreakinfo/cmd/outbreak-cli/commands"
	"outbreakinfo/lib/telemetry"
	"outbreakinfo/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "outbreak-cli")
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
