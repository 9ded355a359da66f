package reader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/achilleasa/accel/asset"
	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/scene"
	"github.com/achilleasa/accel/scene/writer"
	"github.com/achilleasa/accel/types"
)

func TestFloat32Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 1 argument; got 0`
	_, err := parseFloat32([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseFloat32([]string{"v", "not-a-float"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseFloat32([]string{"v", "3.14"})
	if err != nil {
		t.Fatal(err)
	}

	if v != 3.14 {
		t.Fatalf("expected parsed value to be 3.14; got %f", v)
	}
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 0`
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "0.4"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, 0.4}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordIndex(t *testing.T) {
	type spec struct {
		token     string
		relOffset int
		exp       int
		expErr    bool
	}
	specs := []spec{
		{"1", 0, 0, false},
		{"2", 3, 4, false},
		{"-1", 0, 9, false},
		{"-10", 0, 0, false},
		{"-11", 0, 0, true},
		{"11", 0, 0, true},
		{"0", 0, 0, true},
		{"x", 0, 0, true},
	}

	for index, s := range specs {
		got, err := selectFaceCoordIndex(s.token, 10, s.relOffset)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil || got != s.exp {
			t.Fatalf("[spec %d] expected offset %d; got %d (%v)", index, s.exp, got, err)
		}
	}
}

const quadScene = `
# a unit quad and a triangle
o floor
mtllib ignored.mtl
camera_eye 0 5 5
camera_look 0 0 0
camera_fov 60
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vt 0 0
vn 0 1 0
f 1/1/1 2/1/1 3/1/1 4/1/1
v 0 2 0
v 1 2 0
v 0 2 1
f -3 -2 -1
`

func readString(t *testing.T, payload string) (*scene.Scene, error) {
	t.Helper()
	res := asset.NewResourceFromStream("test.obj", strings.NewReader(payload))
	defer res.Close()
	return newWavefrontReader(builder.Options{}).Read(context.Background(), res)
}

func TestWavefrontReader(t *testing.T) {
	sc, err := readString(t, quadScene)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Triangles) != 3 {
		t.Fatalf("expected quad + triangle to produce 3 triangles; got %d", len(sc.Triangles))
	}
	expTri := [3]types.Vec3{{0, 0, 0}, {1, 0, 1}, {0, 0, 1}}
	if sc.Triangles[1].Vertices != expTri {
		t.Fatalf("expected second quad triangle %v; got %v", expTri, sc.Triangles[1].Vertices)
	}
	expTri = [3]types.Vec3{{0, 2, 0}, {1, 2, 0}, {0, 2, 1}}
	if sc.Triangles[2].Vertices != expTri {
		t.Fatalf("expected negative indices to select %v; got %v", expTri, sc.Triangles[2].Vertices)
	}

	if sc.Camera == nil || sc.Camera.FOV != 60 || sc.Camera.Position != (types.Vec3{0, 5, 5}) {
		t.Fatalf("expected camera settings to be parsed; got %+v", sc.Camera)
	}

	tc := bvh.NewTraversalContext(0, 0)
	ray := types.NewRay(types.Vec3{0.25, 10, 0.5}, types.Vec3{0, -1, 0}, 0, 100)
	hit, found, err := sc.NearestHit(tc, &ray)
	if err != nil || !found || hit.Primitive != 2 || hit.Distance != 8 {
		t.Fatalf("expected to hit the upper triangle at 8; got %+v (found=%t, err=%v)", hit, found, err)
	}
}

func TestWavefrontReaderErrors(t *testing.T) {
	specs := []struct {
		payload string
		expErr  string
	}{
		{"v 0 0\n", `[test.obj: 1] error: unsupported syntax for "v"`},
		{"v 0 0 0\nf 1 2\n", `[test.obj: 2] error: unsupported syntax for "f"`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", "[test.obj: 4] error: could not parse vertex coord for face argument 2"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1// 2// 3\n", "expected each face argument to contain 3 indices"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", "could not parse tex coord for face argument 0"},
	}

	for index, s := range specs {
		_, err := readString(t, s.payload)
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestIncludedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.obj"), "v 5 5 5\ncall part.obj\n")
	writeFile(t, filepath.Join(dir, "part.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	sc, err := ReadScene(context.Background(), filepath.Join(dir, "main.obj"), builder.Options{})
	if err != nil {
		t.Fatal(err)
	}

	// Indices in included files are relative to the included file.
	expTri := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if len(sc.Triangles) != 1 || sc.Triangles[0].Vertices != expTri {
		t.Fatalf("expected included triangle %v; got %v", expTri, sc.Triangles)
	}

	writeFile(t, filepath.Join(dir, "broken.obj"), "call missing.obj\n")
	_, err = ReadScene(context.Background(), filepath.Join(dir, "broken.obj"), builder.Options{})
	if err == nil || !strings.Contains(err.Error(), "broken.obj: 1") {
		t.Fatalf("expected an error referencing the including file; got %v", err)
	}
}

func TestCompiledSceneRoundTrip(t *testing.T) {
	sc, err := readString(t, quadScene)
	if err != nil {
		t.Fatal(err)
	}

	zipFile := filepath.Join(t.TempDir(), "scene.zip")
	if err = writer.WriteScene(sc, zipFile); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadScene(context.Background(), zipFile, builder.Options{})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loaded.Triangles, sc.Triangles) {
		t.Fatal("expected triangles to survive the round trip")
	}
	if loaded.Tree.Len() != sc.Tree.Len() || loaded.Tree.Depth() != sc.Tree.Depth() || loaded.Tree.Bounds() != sc.Tree.Bounds() {
		t.Fatal("expected tree shape to survive the round trip")
	}
	if loaded.Camera == nil || loaded.Camera.Frustrum != sc.Camera.Frustrum {
		t.Fatal("expected camera to survive the round trip")
	}
}

func TestCompiledSceneValidation(t *testing.T) {
	sc, err := readString(t, quadScene)
	if err != nil {
		t.Fatal(err)
	}

	// Break the primitive permutation
	snap := sc.Snapshot()
	snap.PrimIndices[0] = snap.PrimIndices[1]
	if _, err = scene.FromSnapshot(snap); !errors.Is(err, bvh.ErrMalformedTree) {
		t.Fatalf("expected corrupted snapshot to be rejected with ErrMalformedTree; got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Create("readme.txt")
	zw.Close()
	res := asset.NewResourceFromStream("empty.zip", &buf)
	if _, err = newZipSceneReader().Read(context.Background(), res); err == nil || !strings.Contains(err.Error(), "missing scene.bin") {
		t.Fatalf("expected a missing snapshot error; got %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := ReadScene(context.Background(), "scene.fbx", builder.Options{}); err == nil {
		t.Fatal("expected an error for unsupported formats")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}
