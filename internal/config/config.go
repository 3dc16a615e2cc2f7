// Package config loads the cqptree configuration from a CUE file. Every
// setting has a default, so running without a configuration file works.
package config

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/corpling/cqptree/internal/frontend/conllu"
)

// Server holds the HTTP server settings.
type Server struct {
	// Addr is the listen address, host optional.
	Addr string
	// TokenLimit caps how many tokens a query may bind. Arrangement
	// enumeration is factorial in the token count, so the cap protects
	// the server from pathological queries.
	TokenLimit int
	// Timeout bounds the wall-clock time spent on one translation.
	Timeout time.Duration
	// Database is the path of the SQLite translation log. Empty disables
	// the log.
	Database string
}

// Config is the full cqptree configuration.
type Config struct {
	Server Server
	// Mapping names the corpus attributes the CoNLL-U front end emits.
	Mapping conllu.Mapping
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:       ":8080",
			TokenLimit: 5,
			Timeout:    5 * time.Second,
		},
		Mapping: conllu.Spraakbanken,
	}
}

// LoadError is a configuration problem, with a CUE position if available.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// rawConfig mirrors the CUE file layout. Absent fields stay zero and fall
// back to their defaults.
type rawConfig struct {
	Server struct {
		Addr       string `json:"addr"`
		TokenLimit int    `json:"tokenLimit"`
		Timeout    string `json:"timeout"`
		Database   string `json:"database"`
	} `json:"server"`
	CoNLLU conllu.Mapping `json:"conllu"`
}

// Load reads and validates the configuration file at path. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Message: fmt.Sprintf("reading configuration: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return Config{}, &LoadError{Message: fmt.Sprintf("compiling configuration: %v", err), Pos: value.Pos()}
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return Config{}, &LoadError{Message: fmt.Sprintf("decoding configuration: %v", err), Pos: value.Pos()}
	}

	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if raw.Server.TokenLimit != 0 {
		if raw.Server.TokenLimit < 1 {
			return Config{}, &LoadError{Message: "server.tokenLimit must be at least 1"}
		}
		cfg.Server.TokenLimit = raw.Server.TokenLimit
	}
	if raw.Server.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Server.Timeout)
		if err != nil {
			return Config{}, &LoadError{Message: fmt.Sprintf("server.timeout: %v", err)}
		}
		if timeout <= 0 {
			return Config{}, &LoadError{Message: "server.timeout must be positive"}
		}
		cfg.Server.Timeout = timeout
	}
	cfg.Server.Database = raw.Server.Database

	cfg.Mapping = mergeMapping(cfg.Mapping, raw.CoNLLU)
	return cfg, nil
}

// mergeMapping overrides the default column mapping field by field, so a
// configuration can rename a single attribute without repeating the rest.
func mergeMapping(base, override conllu.Mapping) conllu.Mapping {
	if override.Form != "" {
		base.Form = override.Form
	}
	if override.Lemma != "" {
		base.Lemma = override.Lemma
	}
	if override.UPOS != "" {
		base.UPOS = override.UPOS
	}
	if override.XPOS != "" {
		base.XPOS = override.XPOS
	}
	if override.Deprel != "" {
		base.Deprel = override.Deprel
	}
	if override.Feats != "" {
		base.Feats = override.Feats
	}
	return base
}
