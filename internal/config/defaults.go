package config

import "libris/internal/services/hf"

const (
	defaultDataDir            = "~/.local/share/libris"
	defaultLogDir             = "~/.local/share/libris/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLimitCeiling       = 100
	defaultMinPerSource       = 5
	defaultSourceTimeout      = 10
	defaultCacheTTL           = 900
	defaultCacheCapacity      = 256
	defaultCacheReadTimeoutMS = 50
	defaultGutenbergBaseURL   = "https://gutendex.com"
	defaultOpenLibraryBaseURL = "https://openlibrary.org"
	defaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"
	defaultHFBaseURL          = "https://api-inference.huggingface.co"
	defaultSummaryModel       = "mistralai/Mistral-7B-Instruct-v0.2"
	defaultHFTimeout          = 60
	defaultMaxInputChars      = 40000
	defaultMinSourceChars     = 200
	defaultResolveTimeout     = 30
	defaultGenerateTimeout    = 120
	defaultSynthTimeout       = 120
	defaultWordsPerMinute     = 165
	defaultAudioMinSeconds    = 3
	defaultAudioMaxSeconds    = 45
	defaultQueueDepth         = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Search: Search{
			LimitCeiling:         defaultLimitCeiling,
			MinPerSource:         defaultMinPerSource,
			SourceTimeoutSeconds: defaultSourceTimeout,
			CacheTTLSeconds:      defaultCacheTTL,
			CacheCapacity:        defaultCacheCapacity,
			CacheReadTimeoutMS:   defaultCacheReadTimeoutMS,
			Weights: Weights{
				TitleContains:    10,
				TitleExact:       5,
				TitlePrefix:      3,
				AuthorMatch:      8,
				AuthorExact:      4,
				Description:      2,
				Quality:          1,
				SourceFullText:   3,
				SourceOpen:       2,
				SourceCommercial: 1,
			},
		},
		Sources: Sources{
			GutenbergBaseURL:   defaultGutenbergBaseURL,
			OpenLibraryBaseURL: defaultOpenLibraryBaseURL,
			GoogleBooksBaseURL: defaultGoogleBooksBaseURL,
		},
		HuggingFace: HuggingFace{
			BaseURL:        defaultHFBaseURL,
			SummaryModel:   defaultSummaryModel,
			TimeoutSeconds: defaultHFTimeout,
		},
		Summary: Summary{
			Languages:              hf.Languages(),
			Styles:                 hf.Styles(),
			MaxInputChars:          defaultMaxInputChars,
			MinSourceChars:         defaultMinSourceChars,
			ResolveTimeoutSeconds:  defaultResolveTimeout,
			GenerateTimeoutSeconds: defaultGenerateTimeout,
		},
		Audio: Audio{
			SynthTimeoutSeconds: defaultSynthTimeout,
			WordsPerMinute:      defaultWordsPerMinute,
			MinSeconds:          defaultAudioMinSeconds,
			MaxSeconds:          defaultAudioMaxSeconds,
		},
		Background: Background{
			QueueDepth: defaultQueueDepth,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
