package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var startServiceNodesCommand = cli.Command{
	Name:      "startservicenodes",
	Usage:     "Start one or more registered slave service nodes.",
	ArgsUsage: "[alias...]",
	Action:    actionDecorator(startServiceNodes),
}

func startServiceNodes(ctx *cli.Context) error {
	params := aliasParams(ctx)

	var result string
	if err := getClient(ctx).call("startservicenodes", params, &result); err != nil {
		return err
	}
	fmt.Print(result)
	return nil
}

// aliasParams forwards ctx's positional arguments as-is; an empty slice
// means "every registered alias", per startservicenodes/stopservicenodes.
func aliasParams(ctx *cli.Context) []interface{} {
	args := ctx.Args()
	params := make([]interface{}, len(args))
	for i, a := range args {
		params[i] = a
	}
	return params
}
