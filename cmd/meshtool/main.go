// meshtool is a CLI utility for inspecting and decimating OBJ meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/meshkit/decimate/internal/config"
	"github.com/meshkit/decimate/internal/logger"
	"github.com/meshkit/decimate/pkg/formats"
	"github.com/meshkit/decimate/pkg/simplify"
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
	case "decimate", "dec":
		cmdDecimate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - OBJ mesh inspection and decimation utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.obj>                     Show mesh statistics
  decimate [options] <in.obj> <out.obj>  Simplify a mesh

Decimate options:
  -config path          Config file (default ./meshtool.yaml)
  -target-ratio 0.5     Fraction of triangles to keep
  -lossless             Remove only zero-error edges
  -aggressiveness 7     Threshold schedule exponent
  -preserve-borders     Never collapse border edges
  -verbose              Log per-pass progress

Examples:
  meshtool info bunny.obj
  meshtool decimate -target-ratio 0.2 bunny.obj bunny_lod2.obj
  meshtool decimate -lossless scan.obj scan_clean.obj`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.obj>")
		os.Exit(1)
	}

	m, info, err := formats.ParseOBJFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:       %s\n", args[0])
	if info.Name != "" {
		fmt.Printf("Object:     %s\n", info.Name)
	}
	fmt.Printf("Vertices:   %d\n", len(m.Vertices))
	fmt.Printf("Triangles:  %d\n", m.TriangleCount())
	fmt.Printf("Sub-meshes: %d\n", m.SubMeshCount())
	for i := range m.Indices {
		name := info.Materials[i]
		if name == "" {
			name = "(default)"
		}
		fmt.Printf("  [%d] %-20s %d triangles\n", i, name, len(m.Indices[i])/3)
	}
	fmt.Printf("Normals:    %v\n", m.Normals != nil)
	fmt.Printf("UVs:        %v\n", m.UV[0].Present())
}

// configFlagValue pre-scans args for -config so the file can seed the
// remaining flag defaults before parsing.
func configFlagValue(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func cmdDecimate(args []string) {
	cfg, err := config.Load(configFlagValue(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("decimate", flag.ExitOnError)
	fs.String("config", "", "path to config file")
	verbose := fs.Bool("verbose", false, "log per-pass progress")
	config.BindFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool decimate [options] <in.obj> <out.obj>")
		os.Exit(1)
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	simplify.SetLogSink(logger.Sugar)

	m, info, err := formats.ParseOBJFile(inPath)
	if err != nil {
		logger.Sugar.Fatalf("reading %s: %v", inPath, err)
	}

	opts := simplify.Options{
		Aggressiveness:        cfg.Decimate.Aggressiveness,
		PreserveBorders:       cfg.Decimate.PreserveBorders,
		EnableSmartLink:       cfg.Decimate.SmartLink,
		KeepLinkedVertices:    cfg.Decimate.KeepLinkedVertices,
		VertexLinkDistanceSqr: cfg.Decimate.VertexLinkDistanceSqr,
		MaxVertexCount:        cfg.Decimate.MaxVertexCount,
		Verbose:               *verbose,
	}
	if opts.VertexLinkDistanceSqr <= 0 {
		opts.VertexLinkDistanceSqr = simplify.DefaultOptions().VertexLinkDistanceSqr
	}

	engine, err := simplify.NewAlgorithm(cfg.Decimate.Algorithm, opts)
	if err != nil {
		logger.Sugar.Fatalf("configuring engine: %v", err)
	}
	if err := engine.Initialize(m); err != nil {
		logger.Sugar.Fatalf("loading mesh: %v", err)
	}

	before := m.TriangleCount()
	if cfg.Decimate.Lossless {
		err = engine.DecimateLossless()
	} else {
		target := int(float64(before) * cfg.Decimate.TargetRatio)
		err = engine.DecimateTo(target)
	}
	if err != nil {
		logger.Sugar.Fatalf("decimating: %v", err)
	}

	out := engine.ToMesh()
	if err := formats.WriteOBJFile(outPath, out, info); err != nil {
		logger.Sugar.Fatalf("writing %s: %v", outPath, err)
	}

	after := out.TriangleCount()
	logger.Sugar.Infof("%s: %d -> %d triangles (%.1f%%), %d vertices",
		outPath, before, after, 100*float64(after)/float64(before), len(out.Vertices))
}
