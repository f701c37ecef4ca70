package cmd

import (
	"encoding/json"
	"fmt"
	"github.com/kurumiimari/vickrey"
	"github.com/kurumiimari/vickrey/auctioneer/api"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

func apiClient() (*api.Client, error) {
	var url string
	if serverURL == "" {
		url = fmt.Sprintf("http://localhost:%d", vickrey.Config.Params.APIPort)
	} else {
		url = serverURL
	}

	client := api.NewClient(url, vickrey.Config.APIKey)

	_, err := client.Status()
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return nil, errors.New("connection to vickrey refused - did you select the right network?")
		}
		return nil, err
	}

	return client, nil
}

func uint64Arg(in string, name string) (uint64, error) {
	out, err := strconv.ParseUint(in, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return out, nil
}

func printJSON(in interface{}) error {
	out, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
