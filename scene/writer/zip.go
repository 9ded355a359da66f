package writer

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/achilleasa/accel/log"
	"github.com/achilleasa/accel/scene"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) (err error) {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := zipFile.Close(); err == nil {
			err = closeErr
		}
	}()

	if err = writeZip(sc, zipFile); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1000000)
	return nil
}

func writeZip(sc *scene.Scene, out io.Writer) error {
	zw := zip.NewWriter(out)

	cw, err := zw.Create(scene.SnapshotFile)
	if err != nil {
		zw.Close()
		return err
	}

	if err = gob.NewEncoder(cw).Encode(sc.Snapshot()); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
