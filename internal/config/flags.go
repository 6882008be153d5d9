package config

// Overrides carries command-line settings that win over the config file.
// Zero values leave the loaded setting alone.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	Roots      []string
}

// apply applies CLI flag overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if len(o.Roots) > 0 {
		cfg.Output.Roots = append(cfg.Output.Roots, o.Roots...)
	}
}
