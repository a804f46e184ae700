package config

const (
	BackendSQLite    = "sqlite"
	BackendDirectory = "directory"

	defaultMediaDB              = "~/.local/share/coursepack/media.db"
	defaultMediaDir             = "~/.local/share/coursepack/media"
	defaultOutputDir            = "~/coursepack"
	defaultLogDir               = "~/.local/share/coursepack/logs"
	defaultStoreBackend         = BackendSQLite
	defaultMaxConcurrentFetches = 8
	defaultFetchTimeoutSeconds  = 30
	defaultNavigationMode       = "linear"
	defaultCompletionCriteria   = "view-all"
	defaultPassMark             = 80
	defaultPackageVersion       = "1.0"
	defaultPreviewStage         = "scorm"
	defaultInlineMediaMaxBytes  = 32 * 1024 * 1024
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDB:   defaultMediaDB,
			MediaDir:  defaultMediaDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Resolver: Resolver{
			MaxConcurrentFetches: defaultMaxConcurrentFetches,
			FetchTimeoutSeconds:  defaultFetchTimeoutSeconds,
		},
		Package: Package{
			NavigationMode:     defaultNavigationMode,
			CompletionCriteria: defaultCompletionCriteria,
			PassMark:           defaultPassMark,
			Version:            defaultPackageVersion,
			AllowRetake:        true,
		},
		Preview: Preview{
			Stage:               defaultPreviewStage,
			InlineMediaMaxBytes: defaultInlineMediaMaxBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
