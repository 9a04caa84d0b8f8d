package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var generateSharedKeyCommand = cli.Command{
	Name:   "generatesharedkey",
	Usage:  "Generate a fresh shared key for a new slave service node.",
	Action: actionDecorator(generateSharedKey),
}

func generateSharedKey(ctx *cli.Context) error {
	key, err := getClient(ctx).callString("generatesharedkey")
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
