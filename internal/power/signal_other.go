//go:build !unix

package power

import "os"

// No graceful signal outside unix; terminate kills.
var (
	terminateSignal = os.Kill
	killSignal      = os.Kill
)
