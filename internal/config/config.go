// Package config loads recovery settings from a YAML file, environment
// variables and command-line overrides, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mahdiidarabi/tzpass-recovery/pkg/tzrecovery"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "TEZOS_RECOVERY_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk layout of a recovery run.
type Config struct {
	Email      string `yaml:"email"`
	Address    string `yaml:"address"`
	Mnemonic   string `yaml:"mnemonic"`
	Iterations int    `yaml:"iterations"`

	PasswordConstraints Constraints `yaml:"password_constraints"`
	Components          Components  `yaml:"components"`
	Generation          Generation  `yaml:"generation"`
	Search              Search      `yaml:"search"`

	// dir resolves relative word list paths; set by LoadFile.
	dir string
}

// Constraints bound the candidate length in characters.
type Constraints struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// Components are the remembered pieces of the passphrase.
type Components struct {
	Component1 string `yaml:"component1"`
	Component2 string `yaml:"component2"`
	Component3 string `yaml:"component3"`
	Component4 string `yaml:"component4"`
}

// List returns the components in slot order.
func (c Components) List() [4]string {
	return [4]string{c.Component1, c.Component2, c.Component3, c.Component4}
}

// Generation describes how slot lists are built.
type Generation struct {
	// WithVariable lets the variable salt take any position among the components.
	WithVariable bool `yaml:"with_variable"`

	PrefixSalt   Salt `yaml:"prefix_salt"`
	VariableSalt Salt `yaml:"variable_salt"`
	ExtraSalt    Salt `yaml:"extra_salt"`

	// Slots extends the component lists with word lists and generated fragments.
	Slots Slots `yaml:"slots"`
}

// Salt mirrors tzrecovery.SaltConfig.
type Salt struct {
	Chars        string `yaml:"chars"`
	Arity        int    `yaml:"arity"`
	IncludeEmpty bool   `yaml:"include_empty"`
	AllowRepeat  bool   `yaml:"allow_repeat"`
}

// Slots holds the per-component extensions.
type Slots struct {
	Component1 Slot `yaml:"component1"`
	Component2 Slot `yaml:"component2"`
	Component3 Slot `yaml:"component3"`
	Component4 Slot `yaml:"component4"`
}

// List returns the slots in order.
func (s Slots) List() [4]Slot {
	return [4]Slot{s.Component1, s.Component2, s.Component3, s.Component4}
}

// Slot lists extra candidates for one component position.
type Slot struct {
	Wordlist  string     `yaml:"wordlist"`
	Fragments *Fragments `yaml:"fragments"`
}

// Fragments mirrors tzrecovery.FragmentConfig.
type Fragments struct {
	Alphabet    string `yaml:"alphabet"`
	MinLength   int    `yaml:"min_length"`
	MaxLength   int    `yaml:"max_length"`
	RepeatLimit int    `yaml:"repeat_limit"`
	Capitalize  struct {
		First bool `yaml:"first"`
		Each  bool `yaml:"each"`
		All   bool `yaml:"all"`
	} `yaml:"capitalize"`
}

// Search configures the worker pool and outputs.
type Search struct {
	Workers    int    `yaml:"workers"`
	SignalRate int    `yaml:"signal_rate"`
	StartIndex uint64 `yaml:"start_index"`
	ResultFile string `yaml:"result_file"`
	LogFile    string `yaml:"log_file"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Iterations: tzrecovery.DefaultIterations,
		PasswordConstraints: Constraints{
			MinLength: 13,
			MaxLength: 64,
		},
		Generation: Generation{
			PrefixSalt:   Salt{IncludeEmpty: true},
			VariableSalt: Salt{IncludeEmpty: true},
			ExtraSalt:    Salt{IncludeEmpty: true},
		},
		Search: Search{
			SignalRate: tzrecovery.DefaultSignalRate,
			ResultFile: tzrecovery.DefaultResultFile,
		},
	}
}

// LoadFile reads path over Defaults. Keys missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// FromEnv collects the settings present in the environment. lookup is
// usually os.LookupEnv. Unset variables leave their fields zero.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("EMAIL", &cfg.Email)
	str("ADDRESS", &cfg.Address)
	str("MNEMONIC", &cfg.Mnemonic)
	str("COMP1", &cfg.Components.Component1)
	str("COMP2", &cfg.Components.Component2)
	str("COMP3", &cfg.Components.Component3)
	str("COMP4", &cfg.Components.Component4)
	str("RESULT_FILE", &cfg.Search.ResultFile)

	if v, ok := lookup(EnvPrefix + "ITERATIONS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%sITERATIONS: %w", EnvPrefix, err)
		}
		cfg.Iterations = n
	}
	return cfg, nil
}

// Merge overlays the non-zero identity, component, constraint and search
// fields of over onto base. Generation settings come from base only.
func Merge(base, over Config) Config {
	out := base
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	setStr(&out.Email, over.Email)
	setStr(&out.Address, over.Address)
	setStr(&out.Mnemonic, over.Mnemonic)
	setInt(&out.Iterations, over.Iterations)

	setInt(&out.PasswordConstraints.MinLength, over.PasswordConstraints.MinLength)
	setInt(&out.PasswordConstraints.MaxLength, over.PasswordConstraints.MaxLength)

	setStr(&out.Components.Component1, over.Components.Component1)
	setStr(&out.Components.Component2, over.Components.Component2)
	setStr(&out.Components.Component3, over.Components.Component3)
	setStr(&out.Components.Component4, over.Components.Component4)

	setInt(&out.Search.Workers, over.Search.Workers)
	setInt(&out.Search.SignalRate, over.Search.SignalRate)
	if over.Search.StartIndex != 0 {
		out.Search.StartIndex = over.Search.StartIndex
	}
	setStr(&out.Search.ResultFile, over.Search.ResultFile)
	setStr(&out.Search.LogFile, over.Search.LogFile)
	return out
}

// Validate checks what can be checked before any generation work.
func (c Config) Validate() error {
	var problems []string
	if _, _, err := tzrecovery.ParseAddress(c.Address); err != nil {
		problems = append(problems, fmt.Sprintf("address: %v", err))
	}
	if strings.TrimSpace(c.Mnemonic) == "" {
		problems = append(problems, "mnemonic is required")
	}
	if c.Iterations < 0 {
		problems = append(problems, fmt.Sprintf("iterations %d < 0", c.Iterations))
	}
	if c.PasswordConstraints.MinLength < 0 || c.PasswordConstraints.MaxLength < c.PasswordConstraints.MinLength {
		problems = append(problems, fmt.Sprintf("password length window [%d, %d] is empty",
			c.PasswordConstraints.MinLength, c.PasswordConstraints.MaxLength))
	}
	if !c.hasComponent() {
		problems = append(problems, "at least one component, word list or fragment generator is required")
	}
	if c.Search.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers %d < 0", c.Search.Workers))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) hasComponent() bool {
	slots := c.Generation.Slots.List()
	for i, comp := range c.Components.List() {
		if comp != "" || slots[i].Wordlist != "" || slots[i].Fragments != nil {
			return true
		}
	}
	return false
}

// Params returns the session parameters.
func (c Config) Params() tzrecovery.Params {
	return tzrecovery.Params{
		Target:     c.Address,
		Email:      c.Email,
		Mnemonic:   c.Mnemonic,
		Iterations: c.Iterations,
	}
}

// SearchConfig returns the worker pool settings on top of the library defaults.
func (c Config) SearchConfig() tzrecovery.SearchConfig {
	sc := tzrecovery.DefaultSearchConfig()
	sc.NumWorkers = c.Search.Workers
	sc.StartIndex = c.Search.StartIndex
	if c.Search.SignalRate != 0 {
		sc.SignalRate = c.Search.SignalRate
	}
	return sc
}
