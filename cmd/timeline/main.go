package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/programme-lv/contest/timeline"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	var rootCmd = &cobra.Command{
		Use:           "timeline",
		Short:         "Inspect a competition timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "timeline.toml", "Timeline TOML file")

	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check that the timeline is well formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := timeline.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d intervals, ok\n", tl.CompetitionID(), len(tl.Intervals()))
			return nil
		},
	}

	var at string
	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the resolved timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := timeline.Load(configPath)
			if err != nil {
				return err
			}
			now := timeline.Clock()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}
			fmt.Println(renderPhase(tl, tl.Phase(now)))
			return nil
		},
	}
	showCmd.Flags().StringVar(&at, "at", "", "Resolve at this RFC 3339 instant instead of now")

	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Live view of the timeline, refreshed every second",
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := timeline.Load(configPath)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newWatchModel(tl, timeline.Clock)).Run()
			return err
		},
	}

	rootCmd.AddCommand(validateCmd, showCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
