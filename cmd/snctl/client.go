package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// rpcRequest and rpcResponse follow the bitcoind-style JSON-RPC 1.0 envelope
// the operator surface is dispatched through (spec.md §6's "Out of scope"
// JSON-RPC front-end); snctl is the client half of that boundary, the
// server half is assumed to already exist on the node being managed.
type rpcRequest struct {
	ID     int           `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// rpcClient is a minimal JSON-RPC 1.0 client for the five service-node
// operator commands, mirroring how a bitcoind-family daemon dispatches
// "generatesharedkey"/"startservicenodes"/etc. by method name.
type rpcClient struct {
	url      string
	user     string
	password string
	client   *http.Client
}

func newRPCClient(url, user, password string) *rpcClient {
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	return &rpcClient{url: url, user: user, password: password, client: &http.Client{}}
}

// call invokes method with params and unmarshals the result into out (which
// may be nil when the caller does not need the result; it is then discarded).
func (c *rpcClient) call(method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("malformed RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// callString is the common case: every one of the five commands returns a
// plain human-readable string.
func (c *rpcClient) callString(method string, params ...interface{}) (string, error) {
	var result string
	if err := c.call(method, params, &result); err != nil {
		return "", err
	}
	return result, nil
}
