package config

import "github.com/caarlos0/env/v11"

// Env carries the process-level settings read from the environment.
type Env struct {
	Addr       string `env:"TULUYEN_ADDR" envDefault:":8692"`
	DataDir    string `env:"TULUYEN_DATA_DIR" envDefault:"data"`
	Storage    string `env:"TULUYEN_STORAGE" envDefault:"file"` // file | sqlite | memory
	ConfigPath string `env:"TULUYEN_CONFIG" envDefault:"tuluyen_config.yml"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	TextModel    string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ImageModel   string `env:"GEMINI_IMAGE_MODEL" envDefault:"imagen-4.0-generate-001"`
}

// FromEnv parses the environment into Env.
func FromEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
