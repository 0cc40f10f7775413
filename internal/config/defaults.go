package config

const (
	defaultConfigPath             = "~/.config/reelmux/config.toml"
	defaultStateDir               = "~/.local/state/reelmux"
	defaultLogDir                 = "~/.local/share/reelmux/logs"
	defaultAPIBind                = "127.0.0.1:7488"
	defaultAPIBurst               = 20
	defaultShutdownTimeoutSeconds = 15
	defaultDownloadTimeoutSeconds = 300
	defaultUserAgent              = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultReferer                = "https://www.youtube.com/"
	defaultAcceptLanguage         = "en-US,en;q=0.9"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultFFmpegTimeoutSeconds   = 600
	defaultExtractTimeoutSeconds  = 30
	defaultCobaltVQuality         = "1080"
	defaultRapidAPIURL            = "https://social-download-all-in-one.p.rapidapi.com/v1/social/autolink"
	defaultRapidAPIHost           = "social-download-all-in-one.p.rapidapi.com"
	defaultCacheTTLSeconds        = 600
	defaultCacheKeyPrefix         = "reelmux:extract:"
	defaultRedisAddr              = "localhost:6379"
	defaultNotifyTimeoutSeconds   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	redactedValue = "********"
)

// Provider names accepted in extract chains.
const (
	ProviderCobalt    = "cobalt"
	ProviderRapidAPI  = "rapidapi"
	ProviderOpenGraph = "opengraph"
)

var defaultCobaltInstances = []string{
	"https://api.cobalt.tools",
	"https://co.wuk.sh",
	"https://cobalt-api.hyper.lol",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:  defaultTempDir(),
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		API: API{
			Bind:                   defaultAPIBind,
			Burst:                  defaultAPIBurst,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Merge: Merge{
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			UserAgent:              defaultUserAgent,
			Referer:                defaultReferer,
			AcceptLanguage:         defaultAcceptLanguage,
		},
		FFmpeg: FFmpeg{
			Binary:         defaultFFmpegBinary,
			ProbeBinary:    defaultFFprobeBinary,
			TimeoutSeconds: defaultFFmpegTimeoutSeconds,
		},
		Extract: Extract{
			TimeoutSeconds: defaultExtractTimeoutSeconds,
			DefaultChain:   []string{ProviderRapidAPI, ProviderOpenGraph},
			Routes: []Route{
				{
					Name:  "youtube",
					Hosts: []string{"youtube.com", "youtu.be"},
					Chain: []string{ProviderCobalt, ProviderRapidAPI},
				},
			},
			Cobalt: Cobalt{
				Enabled:   true,
				Instances: append([]string(nil), defaultCobaltInstances...),
				VQuality:  defaultCobaltVQuality,
			},
			RapidAPI: RapidAPI{
				Enabled: true,
				URL:     defaultRapidAPIURL,
				Host:    defaultRapidAPIHost,
			},
			OpenGraph: OpenGraph{
				Enabled:   true,
				UserAgent: defaultUserAgent,
			},
			Cache: Cache{
				RedisAddr:  defaultRedisAddr,
				TTLSeconds: defaultCacheTTLSeconds,
				KeyPrefix:  defaultCacheKeyPrefix,
			},
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
			MergeFailures:         true,
			DaemonStart:           true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// KnownProviders lists every provider name a chain may reference.
func KnownProviders() []string {
	return []string{ProviderCobalt, ProviderRapidAPI, ProviderOpenGraph}
}
