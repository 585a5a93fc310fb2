package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/core"
)

var inspectDiagram bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the state of the store and the record service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}

		if inspectDiagram {
			storage, _ := c.Storage.State().(fs.StorageState)
			service, _ := c.Service.State().(core.ServiceState)
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "hbnb"
			config.SecondaryLabel = "Console Topology"
			fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(buildTree(storage, service), config))
			return nil
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(c.State())
	},
}

type stateNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []stateNode
}

// buildTree maps the state onto the node shape TreeDiagram renders.
// Status values must match introspection.DefaultStyles().
func buildTree(storage fs.StorageState, service core.ServiceState) stateNode {
	watcher := "suspended"
	if storage.WatcherActive {
		watcher = "running"
	}
	store := "running"
	if storage.LoadError != "" {
		store = "failed"
	}

	kinds := make([]stateNode, 0, len(service.PerKind))
	for _, k := range core.Kinds() {
		n, ok := service.PerKind[string(k)]
		if !ok {
			continue
		}
		kinds = append(kinds, stateNode{
			Name:     string(k),
			Status:   "running",
			Metadata: map[string]string{"records": fmt.Sprintf("%d", n)},
		})
	}

	return stateNode{
		Name:   "Service",
		Status: "running",
		Metadata: map[string]string{
			"type":    "container",
			"records": fmt.Sprintf("%d", service.Records),
		},
		Children: []stateNode{
			{
				Name:   "Storage",
				Status: store,
				Metadata: map[string]string{
					"type":   "process",
					"path":   storage.Path,
					"format": storage.Format,
				},
				Children: []stateNode{
					{
						Name:     "Watcher",
						Status:   watcher,
						Metadata: map[string]string{"type": "goroutine"},
					},
				},
			},
			{
				Name:     "Registry",
				Status:   "running",
				Metadata: map[string]string{"type": "container"},
				Children: kinds,
			},
		},
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
}
