package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/fileconcat/internal/config"
	"github.com/jadenpxrk/fileconcat/internal/tokens"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Read(viper.GetViper())
		if err != nil {
			return err
		}
		if path := viper.ConfigFileUsed(); path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
		}
		values := cfg.Map()
		for _, k := range config.Keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, values[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Read(viper.GetViper())
		if err != nil {
			return err
		}
		patch, err := config.ParsePatch(args[0], args[1])
		if err != nil {
			return err
		}
		cfg, err = cfg.Apply(patch)
		if err != nil {
			return err
		}
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], path)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset settings in %s\n", path)
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Write the effective settings to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Read(viper.GetViper())
		if err != nil {
			return err
		}
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported settings to %s\n", args[0])
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Replace the saved settings with a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadFile(args[0])
		if err != nil {
			return err
		}
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported settings from %s\n", args[0])
		return nil
	},
}

var limitsCmd = &cobra.Command{
	Use:   "limits [TOKENS]",
	Short: "List model context limits, optionally with the usage of a token count",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limits, err := contextLimits()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, l := range limits {
				fmt.Fprintf(out, "%-16s %8d\n", l.Name, l.Limit)
			}
			return nil
		}
		count, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid token count %q: %w", args[0], err)
		}
		for _, u := range tokens.UsageOf(count, limits) {
			mark := ""
			if !u.Fits() {
				mark = " (exceeds)"
			}
			fmt.Fprintf(out, "%-16s %8d %6.1f%%%s\n", u.Name, u.Limit.Limit, u.Percent, mark)
		}
		return nil
	},
}

// configPath is the file settings are saved to: --config, the file viper
// read, or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if path := viper.ConfigFileUsed(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return config.DefaultPath()
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configResetCmd, configExportCmd, configImportCmd)
}
