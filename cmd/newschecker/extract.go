package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the title and readable text of an article as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, logger, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := application.Close(); err != nil {
				logger.Warn("close application", "error", err)
			}
		}()

		article, err := application.Analyzer().Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"url":     article.URL,
			"title":   article.Title,
			"content": article.Text,
		})
	},
}
