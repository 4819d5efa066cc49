package config

const (
	defaultConfigPath     = "~/.config/animeapi/config.toml"
	defaultDataDir        = "~/.local/share/animeapi/data"
	defaultManualDir      = "~/.local/share/animeapi/manual"
	defaultOutputDir      = "~/.local/share/animeapi/output"
	defaultStateDir       = "~/.local/share/animeapi/state"
	defaultStoreFile      = "animeapi.db"
	defaultStoreBatchSize = 1000
	defaultKVBatchSize    = 10000
	defaultKVTimeout      = 30
	defaultEarlyExit      = 95
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

var defaultThresholds = map[string]int{
	"kaize":       85,
	"nautiljon":   90,
	"otakotaku":   90,
	"silveryasha": 95,
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	thresholds := make(map[string]int, len(defaultThresholds))
	for platform, value := range defaultThresholds {
		thresholds[platform] = value
	}
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ManualDir: defaultManualDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Datasets: Datasets{
			AOD:         "aod.json",
			ARM:         "arm.json",
			AniTrakt:    []string{"anitrakt_tv.json", "anitrakt_movies.json"},
			Fribb:       "fribb.json",
			Kaize:       "kaize.json",
			Nautiljon:   "nautiljon.json",
			OtakOtaku:   "otakotaku.json",
			SilverYasha: "silveryasha.json",
		},
		Matching: Matching{
			EarlyExit:  defaultEarlyExit,
			Thresholds: thresholds,
		},
		Store: Store{
			BatchSize: defaultStoreBatchSize,
		},
		KV: KV{
			BatchSize:      defaultKVBatchSize,
			TimeoutSeconds: defaultKVTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
