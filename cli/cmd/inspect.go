package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/cli/reader"
	"github.com/printvault/printvault/cli/render"
)

// InspectCommand returns the inspect command with subcommands.
// Inspect returns a deep view of a single stored entity.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a single stored entity (model)",
		Subcommands: []*cli.Command{
			inspectModelCommand(),
		},
	}
}

func inspectModelCommand() *cli.Command {
	flags := ReadOnlyFlags()
	flags = append(flags, ConfigFlag)
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:      "model",
		Usage:     "Inspect a stored model by ID",
		ArgsUsage: "<model-id>",
		Flags:     flags,
		Action:    inspectModelAction,
	}
}

func inspectModelAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("model-id required", 1)
	}
	modelID := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	st, err := buildStore(c.Context, resolveStorage(c, cfg))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	resp, err := reader.InspectModel(c.Context, st, modelID)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("inspect_model", resp)
	}

	return r.Render(resp)
}
