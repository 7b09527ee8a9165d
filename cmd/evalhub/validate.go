package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalhub/evalhub/pkg/content"
)

var validateCmd = &cobra.Command{
	Use:   "validate <corpus-dir>",
	Short: "Validate a corpus directory without serving it",
	Long: `validate parses every markdown document under the given directory and
reports frontmatter problems: missing required fields, unknown enum
values, and paths outside the framework set. The exit code is non-zero
when any document has problems, so it can gate a corpus deploy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func runValidate(cmd *cobra.Command, dir string) error {
	problems := 0
	documents := 0

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext != ".md" && ext != ".markdown" {
			return nil
		}
		documents++

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		itemPath := content.PathFromFile(filepath.ToSlash(rel))

		_, violations, parseErr := content.ParseDocument(itemPath, data)
		if parseErr != nil {
			problems++
			cmd.PrintErrf("%s: %v\n", rel, parseErr)
			return nil
		}
		for _, v := range violations {
			problems++
			cmd.PrintErrf("%s: %s\n", rel, v)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) across %d document(s)", problems, documents)
	}

	cmd.Printf("%d document(s) valid\n", documents)
	return nil
}
