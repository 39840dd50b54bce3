package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zedseven/textsteg"
)

const envPrefix = "STEG"

// Program entry point

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call gets its own viper instance, so tests can run it repeatedly.
func newRootCmd() *cobra.Command {
	vip := viper.New()

	rootCmd := &cobra.Command{
		Use:   "steg",
		Short: "Hide text messages in the least-significant bits of an image",
		Long: `steg hides a text message inside the least-significant bits of an image's
colour channels, terminated by a sentinel, and digs it back out again.
Output images are always written as PNG.

Channels are read in R, G, B order. Images produced by OpenCV-based tools,
which read B, G, R, will not dig back correctly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, vip)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "A config file to read flag values from")
	rootCmd.PersistentFlags().String("sentinel", steg.DefaultSentinel, "The end-of-message marker; must match between hide and dig")
	rootCmd.PersistentFlags().Int("verbosity", int(steg.OutputNone), "The amount of output to provide (0-3)")

	rootCmd.AddCommand(newHideCmd(vip), newDigCmd(vip), newVersionCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command, vip *viper.Viper) error {
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := vip.GetString("config"); len(path) > 0 {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file '%v': %w", path, err)
		}
	}

	if lvl := vip.GetInt("verbosity"); lvl < int(steg.OutputNone) || lvl > int(steg.OutputDebug) {
		return fmt.Errorf("verbosity is outside the allowed range of %d-%d: Provided %d",
			steg.OutputNone, steg.OutputDebug, lvl)
	}
	return nil
}
