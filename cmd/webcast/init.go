package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/webcast/internal/config"
	"github.com/vango-dev/webcast/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		url   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter webcast.json",
		Long: `Write a webcast.json with default settings to the given directory
(default: the current directory).

Examples:
  webcast init
  webcast init ./rooms/7312 --url=wss://push.example.com/webcast/im/push/v2/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, url, force)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Push endpoint to write into the config")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing webcast.json")

	return cmd
}

func runInit(dir, url string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("W104").
			WithDetail(config.ConfigFileName + " already exists in " + dir).
			WithSuggestion("Pass --force to overwrite it")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("W102").Wrap(err)
	}

	cfg := config.New()
	cfg.URL = url
	cfg.ClientParams = map[string]string{}
	cfg.Params = map[string]string{"room_id": ""}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success("Wrote %s", path)
	info("Fill in url, params.room_id and cookie, then run: webcast connect --config %s", path)
	return nil
}
