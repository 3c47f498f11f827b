package main

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/phambaophuc/ecovision/internal/apiclient"
	"github.com/phambaophuc/ecovision/internal/config"
	"go.uber.org/zap"
)

type commandContext struct {
	serverFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext(serverFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		serverFlag:  serverFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("load configuration: %w", err)
			return
		}
		if c.serverFlag != nil {
			if server := strings.TrimSpace(*c.serverFlag); server != "" {
				cfg.Client.BaseURL = strings.TrimRight(server, "/")
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerValue is a development logger with --verbose and a no-op one otherwise.
func (c *commandContext) loggerValue() *zap.Logger {
	c.loggerOnce.Do(func() {
		c.logger = zap.NewNop()
		if c.verboseFlag == nil || !*c.verboseFlag {
			return
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) apiClient() (*apiclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return apiclient.New(cfg.Client.BaseURL, &http.Client{}, c.loggerValue()), nil
}
