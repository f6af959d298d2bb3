package operations

import "os"

// windows has no termination request signal, so only interrupts cancel a run.
var shutdownSignals = []os.Signal{os.Interrupt}
