package cli

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/wordcue/internal/config"
	"github.com/mgpai22/wordcue/internal/logging"
)

// state shared by every command of one invocation
type commandContext struct {
	configFlag *string
	outputFlag *string
	verbose    *bool

	once      sync.Once
	config    *config.Config
	logger    *logging.Logger
	configErr error
}

func newCommandContext(configFlag, outputFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		outputFlag: outputFlag,
		verbose:    verbose,
	}
}

// loads the config file and builds the run logger from it
func (c *commandContext) ensureConfig() error {
	c.once.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}

		level := cfg.Logging.Level
		if *c.verbose {
			level = "debug"
		}
		logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
		if err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
		c.logger = logger.With("run_id", uuid.NewString())
	})
	return c.configErr
}

func (c *commandContext) useDefaultLogger() {
	if c.logger == nil {
		c.logger = logging.NewLogger(*c.verbose)
	}
}

func (c *commandContext) output() string {
	return strings.TrimSpace(*c.outputFlag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
