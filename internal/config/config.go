// Package config resolves the server's startup configuration: thread count,
// listen port, and document root, in the precedence order defaults < config
// file < CLI flags.
//
// The flag parsing follows the teacher's own flagSet idiom (see
// create.go's use of a dedicated pflag.FlagSet per subcommand); the config
// file format and merge precedence follows the teacher's config.go almost
// exactly, trimmed to this server's three settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// DefaultThreads is the worker pool size used when neither a config file
// nor a CLI flag overrides it.
const DefaultThreads = 4

var (
	// ErrUsage is returned for a CLI argument parsing failure (equivalent
	// to the original's usage-and-exit-1 behavior).
	ErrUsage = errors.New("usage error")

	errPortRequired = errors.New("port is required")
	errPortInvalid  = errors.New("port must be between 1 and 65535")
)

// Config holds every setting the server needs to start.
type Config struct {
	Threads int    `json:"threads,omitempty"`
	Root    string `json:"root,omitempty"`
	Port    int    `json:"-"`
}

// Default returns the built-in defaults before any file or flag is applied.
func Default() Config {
	return Config{
		Threads: DefaultThreads,
		Root:    ".",
	}
}

// Load resolves a Config from argv (excluding the program name), following
// defaults < config file (--config) < explicit CLI flags. args must contain
// exactly one positional argument, the port.
func Load(args []string) (Config, error) {
	cfg := Default()

	flagSet := flag.NewFlagSet("fsrv", flag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)

	threads := flagSet.IntP("threads", "t", 0, "number of worker threads")
	root := flagSet.StringP("root", "C", "", "document root directory")
	configPath := flagSet.String("config", "", "path to a JSON5/HuJSON config file")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if *configPath != "" {
		fileCfg, err := loadFile(*configPath)
		if err != nil {
			return Config{}, err
		}

		cfg = merge(cfg, fileCfg)
	}

	if flagSet.Changed("threads") {
		cfg.Threads = *threads
	}

	if flagSet.Changed("root") {
		cfg.Root = *root
	}

	positional := flagSet.Args()
	if len(positional) != 1 {
		return Config{}, fmt.Errorf("%w: expected exactly one positional argument (port), got %d", ErrUsage, len(positional))
	}

	port, err := parsePort(positional[0])
	if err != nil {
		return Config{}, err
	}

	cfg.Port = port

	if cfg.Threads < 1 {
		return Config{}, fmt.Errorf("%w: threads must be >= 1, got %d", ErrUsage, cfg.Threads)
	}

	return cfg, nil
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %w", ErrUsage, errPortRequired)
	}

	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, fmt.Errorf("%w: invalid port %q: %w", ErrUsage, s, err)
	}

	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %w: %d", ErrUsage, errPortInvalid, port)
	}

	return port, nil
}

// loadFile reads and parses a JSON5/HuJSON config file, accepting comments
// and trailing commas the way the teacher's parseConfig does via
// hujson.Standardize.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied, not web-facing input
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s is not valid JSON5: %w", path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Threads != 0 {
		base.Threads = overlay.Threads
	}

	if overlay.Root != "" {
		base.Root = overlay.Root
	}

	return base
}
