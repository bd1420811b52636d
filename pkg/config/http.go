package config

import "time"

type HTTPConfig struct {
	Port           int `koanf:"port"           validate:"gte=1,lte=65535"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes" validate:"gte=0"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"       validate:"gt=0"`
		Write      time.Duration `koanf:"write"      validate:"gt=0"`
		Idle       time.Duration `koanf:"idle"       validate:"gt=0"`
		ReadHeader time.Duration `koanf:"readHeader" validate:"gt=0"`
	} `koanf:"timeout"`
}
