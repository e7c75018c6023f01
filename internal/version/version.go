// ABOUTME: Build version information
// ABOUTME: Overridden at link time with -ldflags "-X .../internal/version.Version=..."
package version

// Version is the release version
var Version = "0.1.0"

// Commit is the source revision, set at build time
var Commit = "dev"

// Product is the user-facing application name
const Product = "SlideSounds"

// String returns the display version
func String() string {
	return Product + " " + Version + " (" + Commit + ")"
}
