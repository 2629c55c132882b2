package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // set with -ldflags="-X main.version=1.0.0"
)

func main() {
	var storage string

	rootCmd := &cobra.Command{
		Use:     "deskimager",
		Short:   "Chat with local models and label your images",
		Long:    `Deskimager is a terminal client for an Ollama server with chat, web scraping and image search agents.`,
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storage != "file" && storage != "mongo" {
				return fmt.Errorf("invalid storage type: %s", storage)
			}
			return run(storage)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "file", "Storage type: file or mongo")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
