package launcher

import (
	"encoding/json"
	"os"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-dxp-maint/flags"
	"github.com/rony4d/go-dxp-maint/integration"
	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/logging"
	"github.com/rony4d/go-dxp-maint/store"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags).
	gitCommit = ""

	app = flags.NewApp(gitCommit, "replays chain maintenance passes and archives their results")
)

func init() {
	app.Commands = []cli.Command{
		{
			Name:      "replay",
			Usage:     "Run maintenance for one block and archive the result",
			ArgsUsage: " ",
			Action:    replayCommand,
			Flags:     configFlags(flags.ReplayFlags()...),
		},
		{
			Name:   "intervals",
			Usage:  "Print archived interval records as JSON lines",
			Action: intervalsCommand,
			Flags:  configFlags(flags.RangeFlags()...),
		},
		{
			Name:   "rules",
			Usage:  "Print the governance parameters of the network as JSON",
			Action: rulesCommand,
			Flags:  configFlags(),
		},
		{
			Name:   "dumpconfig",
			Usage:  "Print the merged configuration as TOML",
			Action: dumpConfigCommand,
			Flags:  configFlags(),
		},
	}
}

func configFlags(extra ...cli.Flag) []cli.Flag {
	var ff []cli.Flag
	ff = append(ff, flags.CommonFlags()...)
	ff = append(ff, flags.NetworkFlags()...)
	ff = append(ff, flags.StoreFlags()...)
	return append(ff, extra...)
}

// Launch runs the command line tool.
func Launch(args []string) error {
	return app.Run(args)
}

func setup(ctx *cli.Context) (Config, *logrus.Logger, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func replayCommand(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	preset, err := cfg.Preset()
	if err != nil {
		return err
	}
	engine, err := integration.NewEngine(preset, nil, log)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.ArchiveDir(), preset.CacheMB)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := loadState(ctx.String("state"), db)
	if err != nil {
		return err
	}
	block := inter.Block{
		Number: st.Dynamic.HeadBlockNumber + 1,
		Time:   st.Dynamic.NextMaintenanceTime,
	}
	if ctx.IsSet("block") {
		block.Number = idx.Block(ctx.Uint64("block"))
	}
	if ctx.IsSet("time") {
		block.Time = inter.Timestamp(ctx.Uint64("time"))
	}

	rec, err := Replay(engine, db, st, block, log)
	if err != nil {
		return err
	}
	return json.NewEncoder(ctx.App.Writer).Encode(rec)
}

func intervalsCommand(ctx *cli.Context) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.ArchiveDir(), cfg.Store.CacheMB)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.Intervals(inter.Timestamp(ctx.Uint64("from")), inter.Timestamp(ctx.Uint64("to")))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(ctx.App.Writer)
	for _, rec := range list {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func rulesCommand(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	preset, err := cfg.Preset()
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write([]byte(preset.Rules.String() + "\n"))
	return err
}

func dumpConfigCommand(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
