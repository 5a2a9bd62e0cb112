package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
	"github.com/rstrohkorb/dynamic-A-Star/internal/server"
	"github.com/rstrohkorb/dynamic-A-Star/scene"
)

var (
	configPath string
	seed       int64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dastar",
		Short: "Proximity graphs and dynamic A* routing",
		Long: `dastar builds a nearest-neighbour graph over a 2D or 3D point cloud and
plans shortest paths across it, re-planning as edges are removed.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "scene config file (YAML)")
	root.PersistentFlags().Int64Var(&seed, "seed", 0, "override the scene's random seed")

	root.AddCommand(newServeCmd(), newRouteCmd())
	return root
}

// loadScene reads --config, falling back to the default scene
func loadScene(cmd *cobra.Command) (scene.Config, error) {
	cfg := scene.DefaultConfig()
	if configPath != "" {
		loaded, err := scene.LoadConfig(configPath)
		if err != nil {
			return scene.Config{}, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var (
		addr  string
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a graph over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("========================================")
			log.Println("🚀 Dynamic A* Server")
			log.Println("========================================")

			cfg, err := loadScene(cmd)
			if err != nil {
				return err
			}

			var g *graph.Graph
			if !empty {
				log.Printf("🗺️  Building %s %dD graph (degree %d)...\n", cfg.Topology, cfg.Dimensions, cfg.EffectiveDegree())
				g, err = scene.Build(cfg)
				if err != nil {
					return err
				}
				log.Printf("   ✅ Graph built: %d nodes\n", g.Size())
			} else {
				log.Println("ℹ️  Starting without a graph")
				log.Println("   Call /build to create one")
			}
			log.Println("")

			server.LogEndpoints()
			log.Println("========================================")
			log.Println("")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(g, cfg).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without building a graph")
	return cmd
}

func newRouteCmd() *cobra.Command {
	var (
		start, goal int
		remove      []int
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Print the path between two nodes as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(remove)%2 != 0 {
				return fmt.Errorf("--remove takes node pairs, got %d values", len(remove))
			}

			cfg, err := loadScene(cmd)
			if err != nil {
				return err
			}
			g, err := scene.Build(cfg)
			if err != nil {
				return err
			}
			for i := 0; i < len(remove); i += 2 {
				if err := g.RemoveEdge(remove[i], remove[i+1]); err != nil {
					return err
				}
			}

			path, err := g.FindPath(start, goal)
			if err != nil {
				return err
			}
			origin, _ := g.Position(start)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"start":    start,
				"goal":     goal,
				"path":     path,
				"distance": path.Length(origin),
			})
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "start node index")
	cmd.Flags().IntVar(&goal, "goal", 1, "goal node index")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "edges to remove first, as a,b pairs (e.g. 10,15,10,14)")
	return cmd
}
