package texmark

import "github.com/goliatone/go-texmark/internal/runtimeconfig"

var (
	ErrDelimitersRequired       = runtimeconfig.ErrDelimitersRequired
	ErrDelimiterMarkerRequired  = runtimeconfig.ErrDelimiterMarkerRequired
	ErrDelimiterDuplicate       = runtimeconfig.ErrDelimiterDuplicate
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrConvertPatternInvalid    = runtimeconfig.ErrConvertPatternInvalid
	ErrConvertOutputRequired    = runtimeconfig.ErrConvertOutputRequired
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	MathConfig     = runtimeconfig.MathConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	ConvertConfig  = runtimeconfig.ConvertConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file, validates it against the
// embedded schema and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
