package client

import (
	"encoding/base64"
	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc/v2"
)

// NodeRPCClient talks to an external chain node whose block count drives
// auction heights.
type NodeRPCClient struct {
	client jsonrpc.RPCClient
}

func NewNodeRPCClient(url string, apiKey string) *NodeRPCClient {
	var client jsonrpc.RPCClient
	if apiKey == "" {
		client = jsonrpc.NewClient(url)
	} else {
		client = jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
			CustomHeaders: map[string]string{
				"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte("x:"+apiKey)),
			},
		})
	}

	return &NodeRPCClient{
		client: client,
	}
}

func (c *NodeRPCClient) GetBlockCount() (int, error) {
	var count int
	if err := c.client.CallFor(&count, "getblockcount"); err != nil {
		return 0, errors.Wrap(err, "error getting block count")
	}
	if count < 0 {
		return 0, errors.Errorf("node reported negative block count %d", count)
	}
	return count, nil
}
