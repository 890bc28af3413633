package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pitstop-service/internal/domain"
)

func (a *app) newTargetsCmd() *cobra.Command {
	var source, file string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Print the target list a run would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = a.cfg.Ingest.Source
			}
			if file == "" {
				file = a.cfg.Ingest.TargetsFile
			}

			list, err := loadTargets(file, source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, t := range list {
				switch t.Kind {
				case domain.TargetBoundingBox:
					fmt.Fprintf(out, "%3d  bbox  %-20s %s\n", i+1, t.Label, t.Box)
				default:
					fmt.Fprintf(out, "%3d  name  %s\n", i+1, t.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "place source: places or osm")
	cmd.Flags().StringVar(&file, "targets", "", "YAML target list")
	return cmd
}
