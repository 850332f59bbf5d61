package cli

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read built-in documentation topics",
		Long: `Docs renders civmod's built-in documentation in the terminal. Without
arguments it lists the available topics.`,
		Example: `  # List topics
  civmod docs

  # Read one
  civmod docs deployment`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names, err := topicNames()
				if err != nil {
					return err
				}
				fmt.Println(titleStyle.Render("Available topics"))
				for _, name := range names {
					fmt.Printf("  %s\n", name)
				}
				return nil
			}

			content, err := topicFiles.ReadFile("topics/" + args[0] + ".md")
			if err != nil {
				return fmt.Errorf("unknown topic %q; run \"civmod docs\" for the list", args[0])
			}
			fmt.Print(renderMarkdown(string(content)))
			return nil
		},
	}
}

func topicNames() ([]string, error) {
	entries, err := topicFiles.ReadDir("topics")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// renderMarkdown converts markdown to terminal output, falling back to
// the raw text when rendering fails or output is piped.
func renderMarkdown(content string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return content
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
