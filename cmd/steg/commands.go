package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zedseven/textsteg"
)

func newHideCmd(vip *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hide",
		Short: "Hide a message in an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := vip.GetString("message")
			if path := vip.GetString("message-file"); len(path) > 0 {
				if len(message) > 0 {
					return errors.New("only one of --message and --message-file may be given")
				}
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				message = string(b)
			}

			config := &steg.HideConfig{
				Sentinel:    vip.GetString("sentinel"),
				OutputLevel: steg.OutputLevel(vip.GetInt("verbosity")),
				Output:      cmd.OutOrStdout(),
			}
			return steg.HideFile(vip.GetString("img"), vip.GetString("out"), message, config)
		},
	}

	cmd.Flags().String("img", "", "The filepath to the image on disk")
	cmd.Flags().String("out", "", "The filepath to write the steg image to (always PNG)")
	cmd.Flags().String("message", "", "The message to hide")
	cmd.Flags().String("message-file", "", "A file whose contents are the message to hide")
	return cmd
}

func newDigCmd(vip *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dig",
		Short: "Recover a message hidden in an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := steg.DigConfig{
				Sentinel:    vip.GetString("sentinel"),
				MaxBits:     vip.GetInt("max-bits"),
				OutputLevel: steg.OutputLevel(vip.GetInt("verbosity")),
				Output:      cmd.OutOrStdout(),
			}
			msg, err := steg.DigFile(vip.GetString("img"), config)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}

	cmd.Flags().String("img", "", "The filepath to the image on disk")
	cmd.Flags().Int("max-bits", 0, "The most bits to read before giving up (0 reads the whole image)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), steg.Version())
		},
	}
}
