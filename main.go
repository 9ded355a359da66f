package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/accel/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	buildFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "min-leaf-items",
			Value: 4,
			Usage: "stop splitting BVH nodes with fewer items",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: 0,
			Usage: "maximum BVH depth (0 selects the default)",
		},
		cli.IntFlag{
			Name:  "build-workers",
			Value: 0,
			Usage: "number of workers for scoring split candidates (0 selects GOMAXPROCS)",
		},
	}

	app := cli.NewApp()
	app.Name = "accel"
	app.Usage = "build and query BVH acceleration structures"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file and build a BVH tree to
accelerate ray and volume queries.

The compiled scene is then written to a zip archive which can be supplied
as an argument to the info, bench and query commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Flags:     buildFlags,
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print scene and BVH statistics",
			ArgsUsage: "scene_file",
			Flags:     buildFlags,
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "bench",
			Usage: "trace batches of primary rays and report traversal statistics",
			Description: `
Generate one primary ray per pixel using the scene camera (or a camera fitted
to the scene bounds) and trace the rays in parallel batches.

Settings can be loaded from a YAML file; command line flags take precedence.`,
			ArgsUsage: "scene_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "load benchmark settings from a YAML file",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of query workers (0 selects GOMAXPROCS)",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "ray grid width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "ray grid height",
				},
				cli.IntFlag{
					Name:  "batches, n",
					Value: 4,
					Usage: "number of batches to trace",
				},
				cli.StringFlag{
					Name:  "mode, m",
					Value: "nearest",
					Usage: "query mode (nearest or any)",
				},
				cli.IntFlag{
					Name:  "stack-capacity",
					Usage: "traversal stack capacity (0 selects the tree minimum)",
				},
				cli.StringFlag{
					Name:  "metrics-addr",
					Usage: "serve prometheus metrics on this address",
				},
			},
			Action: cmd.Bench,
		},
		{
			Name:  "query",
			Usage: "run a single query against a scene",
			Subcommands: []cli.Command{
				{
					Name:      "ray",
					Usage:     "find the triangles hit by a ray",
					ArgsUsage: "scene_file",
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "origin, o",
							Value: "0,0,0",
							Usage: "ray origin as x,y,z",
						},
						cli.StringFlag{
							Name:  "dir, d",
							Value: "0,0,-1",
							Usage: "ray direction as x,y,z",
						},
						cli.Float64Flag{
							Name:  "tmin",
							Value: 0,
							Usage: "minimum hit distance",
						},
						cli.Float64Flag{
							Name:  "tmax",
							Value: 1e6,
							Usage: "maximum hit distance",
						},
						cli.BoolFlag{
							Name:  "any",
							Usage: "stop at the first hit",
						},
					}, buildFlags...),
					Action: cmd.QueryRay,
				},
				{
					Name:      "box",
					Usage:     "list the triangles overlapping a box",
					ArgsUsage: "scene_file",
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "min",
							Usage: "box min corner as x,y,z",
						},
						cli.StringFlag{
							Name:  "max",
							Usage: "box max corner as x,y,z",
						},
					}, buildFlags...),
					Action: cmd.QueryBox,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
