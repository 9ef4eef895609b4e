package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

var (
	treeFiltered bool
	treeJSON     bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the TeamCity project tree",
	Long: `Fetches every build configuration and prints it as a project tree.
Selected builds are marked with [x]. With --filtered only the current
versions are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var forest model.Forest
		if treeFiltered {
			view, err := a.dashboard.GetFilteredTree(cmd.Context())
			if err != nil {
				return err
			}
			forest = view.Forest
		} else {
			view, err := a.dashboard.GetBuildTree(cmd.Context())
			if err != nil {
				return err
			}
			forest = view.Forest
		}

		if treeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(forest)
		}
		return printForest(cmd.OutOrStdout(), forest)
	},
}

func init() {
	treeCmd.Flags().BoolVar(&treeFiltered, "filtered", false, "show only the current versions")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "print the tree as JSON")
}

// printForest writes the forest as an indented outline, projects by name
// and builds by ID.
func printForest(w io.Writer, forest model.Forest) error {
	var b strings.Builder
	for _, name := range forest.Names() {
		writeNode(&b, forest[name], 0)
	}
	fmt.Fprintf(&b, "%d builds\n", forest.TotalBuilds())
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNode(b *strings.Builder, node *model.ProjectNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s/\n", indent, node.Name)
	for _, build := range node.Builds {
		mark := "[ ]"
		if build.Selected {
			mark = "[x]"
		}
		status := string(build.Status)
		if build.IsRunning() {
			status = "RUNNING"
		}
		fmt.Fprintf(b, "%s  %s %s (%s) %s\n", indent, mark, build.Name, build.ID, status)
	}
	for _, sub := range node.SubprojectNames() {
		writeNode(b, node.Subprojects[sub], depth+1)
	}
}
