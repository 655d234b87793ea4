package version

// Version is the envinfer release version, overridable at build time via
// -ldflags "-X envinfer/internal/shared/version.Version=...".
var Version = "1.0.0"
