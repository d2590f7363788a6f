package config

import "github.com/spf13/pflag"

// Overrides holds values set on the command line. Empty fields are unset.
type Overrides struct {
	ConfigPath string
	ServerPort string
	LogLevel   string
}

// BindFlags registers the command-line flags on fs.
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "path to config.toml (default ~/.streamrelay/config.toml)")
	fs.StringVarP(&o.ServerPort, "port", "p", "", "address to listen on, e.g. :5000")
	fs.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	return o
}

// apply copies set overrides onto cfg.
func (o *Overrides) apply(cfg *Config, level *string) {
	if o.ServerPort != "" {
		cfg.ServerPort = o.ServerPort
	}
	if o.LogLevel != "" {
		*level = o.LogLevel
	}
}
