package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change the working plane preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Load()
		if err != nil {
			return err
		}
		printPrefs(cmd.OutOrStdout(), store.Path(), p)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change a preference",
	Example:   `  gowp prefs set grid_spacing "5 mm"`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: prefs.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Set(args[0], args[1])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s updated", args[0]))
		printPrefs(cmd.OutOrStdout(), store.Path(), p)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}

func openStore() (*prefs.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return prefs.NewStore(cfg.PrefsPath), nil
}

func printPrefs(w io.Writer, path string, p prefs.Preferences) {
	printSection(w, "Preferences")
	printLabelValue(w, "File", path)
	printLabelValue(w, prefs.KeyCenterPlaneOnView, strconv.FormatBool(p.CenterPlaneOnView))
	printLabelValue(w, prefs.KeyGridSpacing, prefs.FormatLength(p.GridSpacing))
	printLabelValue(w, prefs.KeyGridMainLine, strconv.Itoa(p.GridMainLine))
	printLabelValue(w, prefs.KeySnapRadius, strconv.Itoa(p.SnapRadius))
}
