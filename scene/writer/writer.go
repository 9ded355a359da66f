package writer

import (
	"io"

	"github.com/achilleasa/accel/scene"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write compiled scene to a zip file.
func WriteScene(sc *scene.Scene, filename string) error {
	writer := newZipSceneWriter(filename)
	return writer.Write(sc)
}

// Write compiled scene as a zip archive to an arbitrary stream.
func WriteSceneTo(sc *scene.Scene, w io.Writer) error {
	return writeZip(sc, w)
}
