package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Environment variables that provide flag defaults.
const (
	envTrace  = "CACHESIM_TRACE"
	envLines  = "CACHESIM_LINES"
	envSeed   = "CACHESIM_SEED"
	envRecord = "CACHESIM_RECORD"
)

// stringSetting returns the flag value if set on the command line, else the
// environment variable if present, else the flag default.
func stringSetting(cmd *cobra.Command, flag, env string) (string, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", err
	}

	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	if envValue, ok := os.LookupEnv(env); ok {
		return envValue, nil
	}

	return value, nil
}

func intSetting(cmd *cobra.Command, flag, env string) (int, error) {
	value, err := cmd.Flags().GetInt(flag)
	if err != nil {
		return 0, err
	}

	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	if envValue, ok := os.LookupEnv(env); ok {
		n, err := strconv.Atoi(envValue)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", env, envValue, err)
		}

		return n, nil
	}

	return value, nil
}

func int64Setting(cmd *cobra.Command, flag, env string) (int64, error) {
	value, err := cmd.Flags().GetInt64(flag)
	if err != nil {
		return 0, err
	}

	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	if envValue, ok := os.LookupEnv(env); ok {
		n, err := strconv.ParseInt(envValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", env, envValue, err)
		}

		return n, nil
	}

	return value, nil
}
