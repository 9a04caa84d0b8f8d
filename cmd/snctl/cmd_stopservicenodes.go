package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var stopServiceNodesCommand = cli.Command{
	Name:      "stopservicenodes",
	Usage:     "Stop one or more registered slave service nodes.",
	ArgsUsage: "[alias...]",
	Action:    actionDecorator(stopServiceNodes),
}

func stopServiceNodes(ctx *cli.Context) error {
	params := aliasParams(ctx)

	var result string
	if err := getClient(ctx).call("stopservicenodes", params, &result); err != nil {
		return err
	}
	fmt.Print(result)
	return nil
}
