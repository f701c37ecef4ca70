package cmd

import (
	"github.com/kurumiimari/vickrey"
	"github.com/kurumiimari/vickrey/auctioneer/api"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/tomb.v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Returns status information about the auctioneer",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		status, err := client.Status()
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the vickrey daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		tmb := new(tomb.Tomb)

		go func() {
			sigC := make(chan os.Signal, 1)
			signal.Notify(sigC, syscall.SIGTERM, syscall.SIGINT)
			select {
			case sig := <-sigC:
				cmdLogger.Info("caught signal, shutting down", "signal", sig.String())
				tmb.Kill(nil)
				return
			case <-tmb.Dying():
				return
			}
		}()

		cfg := vickrey.Config
		return api.Start(tmb, cfg.Params, cfg.Prefix, cfg.APIKey, cfg.NodeURL, cfg.NodeAPIKey)
	},
}

var mineCmd = &cobra.Command{
	Use:   "mine [count]",
	Short: "Advances the height on networks with manual mining",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 1
		if len(args) == 1 {
			var err error
			count, err = strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(err, "invalid count")
			}
		}

		client, err := apiClient()
		if err != nil {
			return err
		}
		height, err := client.Mine(count)
		if err != nil {
			return err
		}
		return printJSON(&api.MineRes{Height: height})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(mineCmd)
}
