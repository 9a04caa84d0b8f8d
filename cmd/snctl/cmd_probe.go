package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var testCommand = cli.Command{
	Name:   "test",
	Usage:  "Liveness/sanity probe against the node's RPC endpoint.",
	Action: actionDecorator(probe),
}

func probe(ctx *cli.Context) error {
	result, err := getClient(ctx).callString("test")
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}
