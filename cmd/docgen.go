package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const docFrontMatter = `---
title: "%s"
---
`

var docOutputPath string

func docgenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "docgen",
		Short:        "Generate the markdown documentation of the CLI commands.",
		Hidden:       true,
		RunE:         docgenAction,
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&docOutputPath, "path", "./docs/cmd",
		"path to write the generated documentation to")

	return cmd
}

func docgenAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(docOutputPath, 0o750); err != nil {
		return err
	}

	return doc.GenMarkdownTreeCustom(rootCmd, docOutputPath, docFilePrepender, docLinkHandler)
}

// docFilePrepender prepends the front matter expected by the documentation site.
func docFilePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(docFrontMatter, title)
}

func docLinkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	return "../" + strings.ToLower(base) + "/"
}
