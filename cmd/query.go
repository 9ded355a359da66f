package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/scene"
	"github.com/achilleasa/accel/scene/reader"
	"github.com/achilleasa/accel/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Cast a single ray through a scene.
func QueryRay(ctx *cli.Context) error {
	setupLogging(ctx)

	origin, err := parseVec3Flag(ctx, "origin")
	if err != nil {
		return err
	}
	dir, err := parseVec3Flag(ctx, "dir")
	if err != nil {
		return err
	}
	if dir.Len() == 0 {
		return errors.New("ray direction must not be zero")
	}

	sc, tc, err := loadQueryScene(ctx)
	if err != nil {
		return err
	}

	ray := types.NewRay(origin, dir.Normalize(), float32(ctx.Float64("tmin")), float32(ctx.Float64("tmax")))
	if ctx.Bool("any") {
		found, err := sc.AnyHit(tc, &ray)
		if err != nil {
			return err
		}
		logger.Noticef("any hit: %t\n%s", found, hitTable(tc.Hits(), tc.Stats()))
		return nil
	}

	_, found, err := sc.NearestHit(tc, &ray)
	if err != nil {
		return err
	}
	logger.Noticef("nearest hit: %t\n%s", found, hitTable(tc.Hits(), tc.Stats()))
	return nil
}

// List the triangles overlapping a box.
func QueryBox(ctx *cli.Context) error {
	setupLogging(ctx)

	minCorner, err := parseVec3Flag(ctx, "min")
	if err != nil {
		return err
	}
	maxCorner, err := parseVec3Flag(ctx, "max")
	if err != nil {
		return err
	}
	volume := types.AABB{Min: minCorner, Max: maxCorner}
	if !volume.Valid() {
		return fmt.Errorf("invalid box: min %v exceeds max %v", minCorner, maxCorner)
	}

	sc, tc, err := loadQueryScene(ctx)
	if err != nil {
		return err
	}

	hits, err := sc.Overlaps(tc, &volume)
	if err != nil {
		return err
	}
	logger.Noticef("%d overlapping triangles\n%s", len(hits), hitTable(hits, tc.Stats()))
	return nil
}

func loadQueryScene(ctx *cli.Context) (*scene.Scene, *bvh.TraversalContext, error) {
	if ctx.NArg() != 1 {
		return nil, nil, errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(context.Background(), ctx.Args().First(), builderOptions(ctx))
	if err != nil {
		return nil, nil, err
	}

	return sc, bvh.NewTraversalContext(sc.Tree.MinStackCapacity(), 0), nil
}

// Parse a vector flag in "x,y,z" format.
func parseVec3Flag(ctx *cli.Context, name string) (types.Vec3, error) {
	var v types.Vec3

	value := ctx.String(name)
	tokens := strings.Split(value, ",")
	if len(tokens) != 3 {
		return v, fmt.Errorf("flag %q: expected a vector in x,y,z format; got %q", name, value)
	}

	for idx, token := range tokens {
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return v, fmt.Errorf("flag %q: could not parse component %d: %w", name, idx, err)
		}
		v[idx] = float32(f)
	}
	return v, nil
}

func hitTable(hits []bvh.HitRecord, stats bvh.QueryStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Triangle", "Distance", "U", "V"})
	for _, hit := range hits {
		table.Append([]string{
			fmt.Sprintf("%d", hit.Primitive),
			fmt.Sprintf("%.4f", hit.Distance),
			fmt.Sprintf("%.4f", hit.U),
			fmt.Sprintf("%.4f", hit.V),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("nodes: %d", stats.NodesVisited),
		fmt.Sprintf("leaves: %d", stats.LeavesVisited),
		fmt.Sprintf("tests: %d", stats.PrimitiveTests),
		fmt.Sprintf("truncated: %t", stats.Truncated),
	})
	table.Render()
	return buf.String()
}
