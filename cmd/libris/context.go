package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"libris/internal/audio"
	"libris/internal/background"
	"libris/internal/config"
	"libris/internal/logging"
	"libris/internal/resultcache"
	"libris/internal/search"
	"libris/internal/services/googlebooks"
	"libris/internal/services/gutenberg"
	"libris/internal/services/hf"
	"libris/internal/services/openlibrary"
	"libris/internal/store"
	"libris/internal/summary"
)

// commandContext lazily wires the application graph so lightweight commands
// (config init, help) never touch the network or the database.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	searchOnce  sync.Once
	aggregator  *search.Aggregator
	searchCache *resultcache.Cache[search.Result]
	searchErr   error

	hfOnce   sync.Once
	hfClient *hf.Client

	queueOnce sync.Once
	queue     *background.Queue

	storeOnce sync.Once
	store     *store.Store
	storeErr  error

	catalogsOnce      sync.Once
	gutenbergClient   *gutenberg.Client
	openlibraryClient *openlibrary.Client
	googleClient      *googlebooks.Client
	catalogsErr       error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureQueue() *background.Queue {
	c.queueOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			return
		}
		logger, _ := c.ensureLogger()
		c.queue = background.NewQueue(cfg.Background.QueueDepth, logger)
	})
	return c.queue
}

func (c *commandContext) ensureCatalogs() error {
	c.catalogsOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.catalogsErr = err
			return
		}
		if c.gutenbergClient, err = gutenberg.New(cfg.Sources.GutenbergBaseURL); err != nil {
			c.catalogsErr = err
			return
		}
		if c.openlibraryClient, err = openlibrary.New(cfg.Sources.OpenLibraryBaseURL); err != nil {
			c.catalogsErr = err
			return
		}
		c.googleClient, c.catalogsErr = googlebooks.New(cfg.Sources.GoogleBooksBaseURL, cfg.Sources.GoogleBooksAPIKey)
	})
	return c.catalogsErr
}

func (c *commandContext) ensureHF() (*hf.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.HuggingFace.Token) == "" {
		return nil, fmt.Errorf("huggingface token not configured; set [huggingface] token in the config file")
	}
	c.hfOnce.Do(func() {
		c.hfClient = hf.NewClient(cfg.HuggingFace.Token, hf.WithBaseURL(cfg.HuggingFace.BaseURL))
	})
	return c.hfClient, nil
}

func (c *commandContext) ensureStore() (*store.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = store.Open(cfg)
	})
	return c.store, c.storeErr
}

func (c *commandContext) ensureAggregator() (*search.Aggregator, error) {
	c.searchOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.searchErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.searchErr = err
			return
		}

		if err := c.ensureCatalogs(); err != nil {
			c.searchErr = err
			return
		}

		c.searchCache = resultcache.New[search.Result](cfg.Search.CacheCapacity, cfg.CacheTTL(), logger)
		c.aggregator = search.New(cfg,
			[]search.Catalog{c.gutenbergClient, c.openlibraryClient, c.googleClient},
			c.searchCache, c.ensureQueue(), logger)
	})
	return c.aggregator, c.searchErr
}

func (c *commandContext) summaryOrchestrator() (*summary.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	hfClient, err := c.ensureHF()
	if err != nil {
		return nil, err
	}
	if err := c.ensureCatalogs(); err != nil {
		return nil, err
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	cache := resultcache.New[summary.Result](cfg.Search.CacheCapacity, cfg.CacheTTL(), logger)
	resolvers := map[string]summary.ContentResolver{
		c.gutenbergClient.Kind().String(): c.gutenbergClient,
	}
	catalogs := map[string]summary.Catalog{
		c.gutenbergClient.Kind().String():   c.gutenbergClient,
		c.openlibraryClient.Kind().String(): c.openlibraryClient,
		c.googleClient.Kind().String():      c.googleClient,
	}
	return summary.New(cfg, resolvers, catalogs, hfClient, st, cache, c.ensureQueue(), logger), nil
}

func (c *commandContext) audioOrchestrator() (*audio.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	hfClient, err := c.ensureHF()
	if err != nil {
		return nil, err
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return audio.New(cfg, hfClient, st, c.ensureQueue(), logger), nil
}

// shutdown drains the background queue and closes the store.
func (c *commandContext) shutdown() {
	if c.queue != nil {
		c.queue.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for parent := cmd; parent != nil; parent = parent.Parent() {
		if parent.Annotations != nil && parent.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
