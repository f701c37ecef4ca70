package cmd

import (
	"github.com/kurumiimari/vickrey"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
)

var (
	prefix     string
	network    string
	serverURL  string
	apiKey     string
	nodeURL    string
	nodeAPIKey string
	configPath string
	logLevel   string
)

var cmdLogger = log.ModuleLogger("cmd")

var rootCmd = &cobra.Command{
	Use:          "vickrey",
	Short:        "A sealed-bid second-price auction node",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fileCfg := new(vickrey.FileConfig)
		if configPath != "" {
			var err error
			fileCfg, err = vickrey.LoadFileConfig(configPath)
			if err != nil {
				return err
			}
		}

		flags := cmd.Flags()
		pick := func(flag, flagVal, fileVal string) string {
			if !flags.Changed(flag) && fileVal != "" {
				return fileVal
			}
			return flagVal
		}

		if err := log.SetLevel(pick("log-level", logLevel, fileCfg.LogLevel)); err != nil {
			return errors.Wrap(err, "invalid log level")
		}

		params, err := auction.ParamsFromName(pick("network", network, fileCfg.Network))
		if err != nil {
			return errors.Wrap(err, "invalid network")
		}
		params, err = fileCfg.ApplyTo(params)
		if err != nil {
			return errors.Wrap(err, "invalid network parameters")
		}

		dd, err := auctioneer.NewDataDir(pick("prefix", prefix, fileCfg.Prefix))
		if err != nil {
			return errors.Wrap(err, "invalid prefix")
		}
		if err := dd.EnsureNetwork(params.Name); err != nil {
			return errors.Wrap(err, "error creating network directory")
		}

		vickrey.Config.Prefix = dd.NetworkPath(params.Name)
		vickrey.Config.Params = params
		vickrey.Config.APIKey = pick("api-key", apiKey, fileCfg.APIKey)
		vickrey.Config.NodeURL = pick("node-url", nodeURL, fileCfg.NodeURL)
		vickrey.Config.NodeAPIKey = pick("node-api-key", nodeAPIKey, fileCfg.NodeAPIKey)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "~/.vickrey", "Sets vickrey's data directory")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "main", "Sets vickrey's network")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server-url", "u", "", "Sets a custom auctioneer API url")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Sets the auctioneer's API key.")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node-url", "", "Sets the URL of a chain node whose block count drives auction heights.")
	rootCmd.PersistentFlags().StringVar(&nodeAPIKey, "node-api-key", "", "Sets the chain node's API key.")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Reads settings from a YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Sets the log level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
