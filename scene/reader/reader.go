package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/achilleasa/accel/asset"
	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(ctx context.Context, res *asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or URL. Wavefront (.obj) files are parsed and
// compiled using the supplied builder options; compiled (.zip) scenes are
// loaded as-is.
func ReadScene(ctx context.Context, filename string, opts builder.Options) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".obj") {
		reader = newWavefrontReader(opts)
	} else if strings.HasSuffix(filename, ".zip") {
		reader = newZipSceneReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := asset.NewResource(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(ctx, res)
}
