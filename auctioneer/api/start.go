package api

import (
	"fmt"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/client"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
	"net/http"
	"time"
)

// FollowInterval is how often an external node is polled when the
// network does not set a block interval of its own.
const FollowInterval = 10 * time.Second

func Start(tmb *tomb.Tomb, params *auction.Params, prefix, apiKey, nodeURL, nodeAPIKey string) error {
	var source auctioneer.HeightSource
	interval := params.BlockInterval
	if nodeURL != "" {
		source = client.NewNodeRPCClient(nodeURL, nodeAPIKey)
		if interval == 0 {
			interval = FollowInterval
		}
	} else if interval == 0 {
		return errors.Errorf("network %s has no block interval and needs a node URL to follow", params.Name)
	}

	engine, err := ledgerdb.NewEngine(prefix)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := ledgerdb.MigrateDB(engine); err != nil {
		return err
	}

	hm := auctioneer.NewHeightMonitor(tmb, engine, source, interval)
	node := auctioneer.NewNode(tmb, params, engine, hm)
	if err := hm.Start(); err != nil {
		return errors.Wrap(err, "error starting height monitor")
	}
	if err := node.Start(); err != nil {
		return errors.Wrap(err, "error starting node")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", params.APIPort),
		Handler: NewAPI(params, node, apiKey),
	}

	tmb.Go(func() error {
		apiLogger.Info("starting HTTP server", "port", params.APIPort)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "error starting HTTP server")
		}
		return nil
	})

	apiLogger.Info("started auctioneer", "network", params.Name, "height", hm.LastHeight())
	<-tmb.Dying()
	srv.Close()
	err = tmb.Wait()
	apiLogger.Info("shut down auctioneer")
	return err
}
