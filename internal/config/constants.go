package config

// ToolName is the binary and directive namespace.
const ToolName = "defcall"

// Version is the tool version reported by the version command.
const Version = "0.3.0"

// ManifestFileNames are the recognized manifest file names, in lookup order.
var ManifestFileNames = []string{"defcall.yaml", "defcall.yml"}

// ArtifactDirName is the per-project directory holding generation artifacts.
const ArtifactDirName = ".defcall"

// SoftParamLimit is the parameter count above which generate warns: the
// dispatch table still covers every shape, but spelling counts grow
// factorially and explain output becomes unreadable.
const SoftParamLimit = 9
