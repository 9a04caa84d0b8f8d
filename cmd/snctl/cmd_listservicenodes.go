package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var listServiceNodesCommand = cli.Command{
	Name:  "listservicenodes",
	Usage: "List every service node known to the registry.",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "extensive",
			Usage: "dump the full entry state for each service node",
		},
	},
	Action: actionDecorator(listServiceNodes),
}

func listServiceNodes(ctx *cli.Context) error {
	result, err := getClient(ctx).callString("listservicenodes", ctx.Bool("extensive"))
	if err != nil {
		return err
	}
	fmt.Print(result)
	return nil
}
