package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys is the config surface persisted in ~/.bcitool.yaml. Each key
// carries a parser so set rejects values the commands could not use.
var configKeys = map[string]struct {
	desc  string
	parse func(string) (any, error)
}{
	"export.db": {
		desc:  "default DuckDB database path for export",
		parse: parsePathValue,
	},
	"query.workers": {
		desc:  "default number of concurrent queries (0 = number of CPUs)",
		parse: parseWorkersValue,
	},
}

func parsePathValue(v string) (any, error) {
	if v == "" {
		return nil, fmt.Errorf("want a file path, got an empty string")
	}
	return v, nil
}

func parseWorkersValue(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("want a non-negative integer, got %q", v)
	}
	return n, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bcitool configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.bcitool.yaml.",
		Example: `  bcitool config                              # show all known keys
  bcitool config set export.db depths.duckdb  # set the default export database
  bcitool config get query.workers            # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigGet(args[0])
			},
		},
	)

	return cmd
}

// knownKey resolves a key against the config surface, listing the valid
// keys on a miss.
func knownKey(key string) error {
	if _, ok := configKeys[key]; ok {
		return nil
	}
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("unknown config key %q (known keys: %v)", key, names)
}

func runConfigShow() error {
	set := map[string]any{}
	var unset []string
	for key := range configKeys {
		if viper.IsSet(key) {
			set[key] = viper.Get(key)
		} else {
			unset = append(unset, key)
		}
	}

	if len(set) > 0 {
		out, err := yaml.Marshal(set)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Print(string(out))
	}

	sort.Strings(unset)
	for _, key := range unset {
		fmt.Printf("# %s is not set (%s)\n", key, configKeys[key].desc)
	}
	return nil
}

func runConfigSet(key, value string) error {
	if err := knownKey(key); err != nil {
		return err
	}
	parsed, err := configKeys[key].parse(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	viper.Set(key, parsed)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".bcitool.yaml")
	}
	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if err := knownKey(key); err != nil {
		return err
	}
	if !viper.IsSet(key) {
		return fmt.Errorf("key %q is not set (%s)", key, configKeys[key].desc)
	}
	fmt.Println(viper.Get(key))
	return nil
}
