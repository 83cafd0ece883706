package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// StoreFlags configure the interval archive.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "archive",
			Usage: "Archive database path, relative to the data directory",
			Value: "archive",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the archive block cache",
		},
	}
}

// RangeFlags bound listed maintenance times.
func RangeFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "from",
			Usage: "First maintenance time to list",
		},
		cli.Uint64Flag{
			Name:  "to",
			Usage: "List maintenance times before this one (0 for no bound)",
		},
	}
}
