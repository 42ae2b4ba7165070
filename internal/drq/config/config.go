// Package config loads the simulator configuration from defaults, an optional
// config file, DRQ_ environment variables and command line flags, in that
// order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/miekg/dns"

	"github.com/haukened/drq-attack/internal/drq/common/utils"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "DRQ_"

// ConfigEnv names the environment variable holding a config file path.
const ConfigEnv = EnvPrefix + "CONFIG"

// AppConfig holds the validated simulator configuration.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Mode selects the generator/attacker pairing, 1-6.
	Mode int `koanf:"mode" validate:"gte=1,lte=6"`

	// Size is the padding size N: hostnames per block.
	Size int `koanf:"size" validate:"gte=1"`

	// Count is the number of random targets attacked when neither Target nor All is set.
	Count int `koanf:"count" validate:"gte=1"`

	Threads int `koanf:"threads" validate:"gte=1"`

	// Split is the client database budget in hostnames; -1 means unrestricted.
	Split int `koanf:"split" validate:"gte=-1,ne=0"`

	Target  string `koanf:"target" validate:"omitempty,hostname_target"`
	All     bool   `koanf:"all"`
	Stat    bool   `koanf:"stat"`
	Quiet   bool   `koanf:"quiet"`
	Verbose bool   `koanf:"verbose"`

	PatternFile string `koanf:"pattern_file" validate:"required"`
	OutputDir   string `koanf:"output_dir" validate:"required"`

	// DFBVariant picks the distinguishable-first-block attack: "subset" or "window".
	DFBVariant string `koanf:"dfb_variant" validate:"required,oneof=subset window"`

	// Seed makes campaigns reproducible; 0 draws a random seed.
	Seed uint64 `koanf:"seed"`

	// CacheSize bounds the length-window memo; 0 disables it.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`
}

// DEFAULT_APP_CONFIG holds the defaults every other source overrides.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:         "dev",
	LogLevel:    "info",
	Mode:        1,
	Size:        50,
	Count:       50,
	Threads:     1,
	Split:       -1,
	OutputDir:   "_output",
	DFBVariant:  "subset",
	CacheSize:   1024,
	BloomFPRate: 0.01,
}

// Flags is the result of parsing the command line.
type Flags struct {
	// Values holds only flags that were set explicitly, by config key.
	Values map[string]any
	// ConfigFile is the --config path, if any.
	ConfigFile string
	Version    bool
}

// flagKeys maps flag names (long and short) to config keys.
var flagKeys = map[string]string{
	"env":           "env",
	"log-level":     "log_level",
	"m":             "mode",
	"mode":          "mode",
	"s":             "size",
	"size":          "size",
	"c":             "count",
	"count":         "count",
	"t":             "threads",
	"threads":       "threads",
	"split":         "split",
	"target":        "target",
	"all":           "all",
	"stat":          "stat",
	"q":             "quiet",
	"quiet":         "quiet",
	"v":             "verbose",
	"verbose":       "verbose",
	"o":             "output_dir",
	"output":        "output_dir",
	"dfb-variant":   "dfb_variant",
	"seed":          "seed",
	"cache-size":    "cache_size",
	"bloom-fp-rate": "bloom_fp_rate",
}

// Usage is printed after the flag defaults.
const Usage = `Modes of operation:
  1) no distinguishable blocks     - random generation
  2) distinguishable first block   - random generation
  3) fully distinguishable blocks  - random generation
  4) no distinguishable blocks     - pattern-based generation
  5) distinguishable first block   - pattern-based generation
  6) fully distinguishable blocks  - pattern-based generation
`

// ParseArgs parses command line arguments. Flags and the pattern file
// argument may be interleaved. flag.ErrHelp is returned for -h.
func ParseArgs(args []string, output io.Writer) (Flags, error) {
	fs := flag.NewFlagSet("drq-attack", flag.ContinueOnError)
	fs.SetOutput(output)
	d := DEFAULT_APP_CONFIG

	var configFile string
	var version bool
	fs.StringVar(&configFile, "config", "", "load configuration from a yaml, json or toml `file`")
	fs.BoolVar(&version, "version", false, "print the version and exit")

	fs.String("env", d.Env, "runtime environment: dev or prod")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	for _, name := range []string{"m", "mode"} {
		fs.Int(name, d.Mode, "mode of operation, see below")
	}
	for _, name := range []string{"s", "size"} {
		fs.Int(name, d.Size, "size of each range query block")
	}
	for _, name := range []string{"c", "count"} {
		fs.Int(name, d.Count, "number of random targets to attack")
	}
	for _, name := range []string{"t", "threads"} {
		fs.Int(name, d.Threads, "number of parallel workers")
	}
	fs.Int("split", d.Split, "client database size in hostnames, -1 for the full database")
	fs.String("target", "", "attack this `domain` only")
	fs.Bool("all", false, "attack every known target; implies --stat and --quiet")
	fs.Bool("stat", false, "write and print statistics about attack accuracy")
	for _, name := range []string{"q", "quiet"} {
		fs.Bool(name, false, "quiet mode")
	}
	for _, name := range []string{"v", "verbose"} {
		fs.Bool(name, false, "verbose output")
	}
	for _, name := range []string{"o", "output"} {
		fs.String(name, d.OutputDir, "statistics output `directory`")
	}
	fs.String("dfb-variant", d.DFBVariant, "distinguishable-first-block attack: subset or window")
	fs.Uint64("seed", d.Seed, "random seed, 0 for a random campaign")
	fs.Int("cache-size", d.CacheSize, "length-window cache entries, 0 disables")
	fs.Float64("bloom-fp-rate", d.BloomFPRate, "hostname bloom filter false positive rate")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: drq-attack [flags] pattern-file\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\n%s", Usage)
	}

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return Flags{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}
	if len(positional) > 1 {
		return Flags{}, fmt.Errorf("expected one pattern file, got %d arguments", len(positional))
	}

	values := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		values[key] = f.Value.(flag.Getter).Get()
	})
	if len(positional) == 1 {
		values["pattern_file"] = positional[0]
	}
	return Flags{Values: values, ConfigFile: configFile, Version: version}, nil
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads a config file, choosing the parser by extension.
var fileLoader = func(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	return k.Load(file.Provider(path), parser)
}

// envLoader loads DRQ_* variables, lowercased and without the prefix.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// flagLoader loads explicitly set flags.
var flagLoader = func(k *koanf.Koanf, values map[string]any) error {
	return k.Load(confmap.Provider(values, "."), nil)
}

// validHostnameTarget accepts names that are valid once canonicalized.
func validHostnameTarget(fl validator.FieldLevel) bool {
	name := utils.CanonicalHostname(fl.Field().String())
	if name == "" {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}

// validateExclusive enforces flag pairs that cannot be combined.
func validateExclusive(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(AppConfig)
	if cfg.Quiet && cfg.Verbose {
		sl.ReportError(cfg.Verbose, "Verbose", "verbose", "excluded_with_quiet", "")
	}
	if cfg.All && cfg.Target != "" {
		sl.ReportError(cfg.Target, "Target", "target", "excluded_with_all", "")
	}
}

var registerValidation = func(v *validator.Validate) error {
	v.RegisterStructValidation(validateExclusive, AppConfig{})
	return v.RegisterValidation("hostname_target", validHostnameTarget)
}

// Load merges defaults, the config file (from flags or DRQ_CONFIG), the
// environment and set flags, applies the --all implications and validates.
func Load(flags Flags) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	path := flags.ConfigFile
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := fileLoader(k, path); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	if len(flags.Values) > 0 {
		if err := flagLoader(k, flags.Values); err != nil {
			return nil, fmt.Errorf("error loading flags: %w", err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.All {
		cfg.Stat = true
		cfg.Quiet = true
		cfg.Verbose = false
	}
	cfg.Target = strings.TrimSpace(cfg.Target)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// IsHelp reports whether err came from -h/--help.
func IsHelp(err error) bool { return errors.Is(err, flag.ErrHelp) }
