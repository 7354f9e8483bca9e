// gltftool is a CLI utility for inspecting glTF scenes: node
// hierarchy, geometry buffers, skins, animations and bounds.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/solfield/gltfscene/internal/config"
	"github.com/solfield/gltfscene/internal/logger"
	"github.com/solfield/gltfscene/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "nodes", "tree":
		cmdNodes(args)
	case "anims", "animations":
		cmdAnims(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gltftool - glTF scene inspection utility

Usage:
  gltftool <command> [options] <file.gltf|file.glb>

Commands:
  info <file>     Show scene statistics and dimensions
  nodes <file>    Print the node hierarchy
  anims <file>    List animations with their channels

Options:
  -config <path>  Load settings from a YAML file (default ./gltftool.yaml)

Examples:
  gltftool info model.glb
  gltftool nodes -config tool.yaml scene.gltf
  gltftool anims rigged.glb`)
}

// loadModel parses the file and builds the scene graph using the
// options from the tool config.
func loadModel(fs *flag.FlagSet, args []string) *scene.Model {
	configPath := fs.String("config", "", "Path to YAML config")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: gltftool %s [options] <file>\n", fs.Name())
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	doc, err := gltf.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", fs.Arg(0), err)
		os.Exit(1)
	}

	model, err := scene.New(doc, scene.Options{
		SkipSkins:      cfg.Loader.SkipSkins,
		SkipAnimations: cfg.Loader.SkipAnimations,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}
	return model
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	model := loadModel(fs, args)

	nodes := 0
	meshes := 0
	primitives := 0
	for _, root := range model.Nodes {
		walk(root, 0, func(n *scene.Node, _ int) {
			nodes++
			if n.Mesh != nil {
				meshes++
				primitives += len(n.Mesh.Primitives)
			}
		})
	}

	fmt.Printf("File:       %s\n", fs.Arg(0))
	fmt.Printf("Nodes:      %d (%d roots)\n", nodes, len(model.Nodes))
	fmt.Printf("Meshes:     %d (%d primitives)\n", meshes, primitives)
	fmt.Printf("Vertices:   %d\n", len(model.VertexAttribs))
	fmt.Printf("Indices:    %d\n", len(model.Indices))
	fmt.Printf("Materials:  %d (incl. default slot)\n", len(model.Materials))
	fmt.Printf("Skins:      %d\n", len(model.Skins))
	fmt.Printf("Animations: %d\n", len(model.Animations))

	if model.Dimensions.IsValid() {
		fmt.Printf("Bounds min: (%.3f, %.3f, %.3f)\n",
			model.Dimensions.Min.X(), model.Dimensions.Min.Y(), model.Dimensions.Min.Z())
		fmt.Printf("Bounds max: (%.3f, %.3f, %.3f)\n",
			model.Dimensions.Max.X(), model.Dimensions.Max.Y(), model.Dimensions.Max.Z())
	} else {
		fmt.Println("Bounds:     (empty)")
	}
}

func cmdNodes(args []string) {
	fs := flag.NewFlagSet("nodes", flag.ExitOnError)
	model := loadModel(fs, args)

	for _, root := range model.Nodes {
		walk(root, 0, func(n *scene.Node, depth int) {
			name := n.Name
			if name == "" {
				name = "(unnamed)"
			}
			marker := ""
			if n.Mesh != nil {
				marker += " [mesh]"
			}
			if n.Skin != nil {
				marker += " [skin]"
			}
			fmt.Printf("%s%3d %s%s\n", strings.Repeat("  ", depth), n.Index, name, marker)
		})
	}
}

func cmdAnims(args []string) {
	fs := flag.NewFlagSet("anims", flag.ExitOnError)
	model := loadModel(fs, args)

	if len(model.Animations) == 0 {
		fmt.Println("No animations")
		return
	}

	for i, anim := range model.Animations {
		if anim.Start > anim.End {
			fmt.Printf("%d: %s (empty)\n", i, anim.Name)
			continue
		}
		fmt.Printf("%d: %s [%.3fs .. %.3fs], %d samplers, %d channels\n",
			i, anim.Name, anim.Start, anim.End, len(anim.Samplers), len(anim.Channels))
		for _, ch := range anim.Channels {
			fmt.Printf("   node %d <- %s\n", ch.Node.Index, pathName(ch.Path))
		}
	}
}

func pathName(p scene.AnimationPath) string {
	switch p {
	case scene.PathTranslation:
		return "translation"
	case scene.PathRotation:
		return "rotation"
	case scene.PathScale:
		return "scale"
	}
	return "unknown"
}

func walk(n *scene.Node, depth int, fn func(*scene.Node, int)) {
	fn(n, depth)
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}
