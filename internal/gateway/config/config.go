package config

import (
	"fmt"
	"strings"

	"github.com/vivtv/product-service/pkg/config"
	"github.com/vivtv/product-service/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Services   Services              `koanf:"services"`
}

// Services describes the proxied backends: where their traffic is picked up
// (from) and which backend path it is rewritten to (to).
type Services struct {
	Product Upstream `koanf:"product"`
	User    Upstream `koanf:"user"`
}

type Upstream struct {
	Url  string `koanf:"url"  validate:"required"`
	From string `koanf:"from" validate:"required,startswith=/"`
	To   string `koanf:"to"   validate:"required,startswith=/"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))

	b.WriteString("\n--- Services Configuration ---\n")
	b.WriteString(fmt.Sprintf("  product.url: %s\n", c.Services.Product.Url))
	b.WriteString(fmt.Sprintf("  product.from: %s\n", c.Services.Product.From))
	b.WriteString(fmt.Sprintf("  product.to: %s\n", c.Services.Product.To))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  user.url: %s\n", c.Services.User.Url))
	b.WriteString(fmt.Sprintf("  user.from: %s\n", c.Services.User.From))
	b.WriteString(fmt.Sprintf("  user.to: %s\n", c.Services.User.To))

	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	return config.Validate(c)
}
