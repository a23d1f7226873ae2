package config

const (
	defaultFrontendPath = "configs/frontend/default.json"
	defaultSettingsDir  = "configs/settings"
	defaultCacheDir     = ".cache"
	defaultLogDir       = "logs"
	defaultSourceLang   = "en"
	defaultTargetLang   = "ja"
)

// Config carries the runtime configuration of the application.
type Config struct {
	// FrontendPath is the fallback frontend pointer document, used when
	// the cache holds no frontend.json.
	FrontendPath string
	// SettingsDir is scanned recursively for setting documents.
	SettingsDir string
	// CacheDir is the root of the chats directory and the cached
	// frontend pointer.
	CacheDir string
	// LogDir receives one timestamped log file per run.
	LogDir string
	// EnvFile is an optional dotenv file loaded before anything else.
	EnvFile string
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// SourceLang and TargetLang are ISO 639-1 codes of the translation
	// direction.
	SourceLang string
	TargetLang string
	// MachineTranslation is the reference tool output substituted into
	// the system prompt.
	MachineTranslation string
}

// New returns a Config with the default paths and language pair.
func New() *Config {
	return &Config{
		FrontendPath: defaultFrontendPath,
		SettingsDir:  defaultSettingsDir,
		CacheDir:     defaultCacheDir,
		LogDir:       defaultLogDir,
		SourceLang:   defaultSourceLang,
		TargetLang:   defaultTargetLang,
	}
}
