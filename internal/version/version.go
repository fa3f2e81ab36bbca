// ABOUTME: Build version information
// ABOUTME: Product name and version reported by the CLI and remote clients
package version

// Version is overridden at build time with -ldflags "-X ..."
var Version = "0.1.0"

const (
	Product      = "Memorylane"
	Manufacturer = "Memorylane"
)
