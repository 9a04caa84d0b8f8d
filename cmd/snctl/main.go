// snctl is the operator CLI for a service/control node, the idiomatic Go
// analogue of issuing generatesharedkey/startservicenodes/stopservicenodes/
// listservicenodes/test through bitcoind's JSON-RPC dispatch table.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[snctl] %v\n", err)
	os.Exit(1)
}

// actionDecorator wraps a cli.ActionFunc so any error it returns is reported
// as a cli exit error with status 1.
func actionDecorator(f cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if err := f(ctx); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
}

func getClient(ctx *cli.Context) *rpcClient {
	return newRPCClient(
		ctx.GlobalString("rpcserver"),
		ctx.GlobalString("rpcuser"),
		ctx.GlobalString("rpcpass"),
	)
}

func main() {
	app := cli.NewApp()
	app.Name = "snctl"
	app.Usage = "control plane for a service/control node"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "localhost:39997",
			Usage: "host:port of the node's JSON-RPC endpoint",
		},
		cli.StringFlag{
			Name:  "rpcuser",
			Usage: "username for JSON-RPC authentication",
		},
		cli.StringFlag{
			Name:  "rpcpass",
			Usage: "password for JSON-RPC authentication",
		},
	}
	app.Commands = []cli.Command{
		generateSharedKeyCommand,
		startServiceNodesCommand,
		stopServiceNodesCommand,
		listServiceNodesCommand,
		testCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
