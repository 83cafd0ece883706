package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags select the governance parameters and engine options.
func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network preset (main|test|fake)",
			Value: "main",
		},
		cli.BoolFlag{
			Name:  "trackstandby",
			Usage: "Record vote totals of block producers and council members that were not elected",
		},
	}
}

// ReplayFlags describe the block a maintenance pass is replayed for.
func ReplayFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "state",
			Usage: "JSON ledger snapshot to start from (defaults to the archived snapshot)",
		},
		cli.Uint64Flag{
			Name:  "block",
			Usage: "Number of the block triggering maintenance (defaults to head block + 1)",
		},
		cli.Uint64Flag{
			Name:  "time",
			Usage: "Unix time of the block triggering maintenance (defaults to the scheduled maintenance time)",
		},
	}
}
