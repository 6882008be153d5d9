package main

import (
	"fmt"
	"sync"

	"github.com/Faultbox/midgard-shapebake/internal/assets"
	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/internal/config"
)

type commandContext struct {
	overrides config.Overrides

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.overrides)
	})
	return c.config, c.configErr
}

// newLoader returns an asset loader searching the configured roots.
func (c *commandContext) newLoader() (*assets.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	m := assets.NewManager()
	for _, root := range cfg.Output.Roots {
		if err := m.AddRoot(root); err != nil {
			return nil, err
		}
	}
	return assets.NewLoader(m), nil
}

func (c *commandContext) loadAvatar(path string) (*avatar.Avatar, error) {
	loader, err := c.newLoader()
	if err != nil {
		return nil, err
	}
	defer loader.Manager.Close()

	av, err := loader.LoadAvatar(path)
	if err != nil {
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	return av, nil
}
