package loader

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/crunchpack/crunch/bitmap"
)

type stubCodec struct{}

func (stubCodec) Decode(r io.Reader, name string) (*bitmap.Bitmap, error) {
	if _, err := ioutil.ReadAll(r); err != nil {
		return nil, err
	}
	return &bitmap.Bitmap{Name: name, Width: 4, Height: 4, FrameW: 4, FrameH: 4, RGBA: make([]uint32, 16)}, nil
}
func (stubCodec) Encode(w io.Writer, b *bitmap.Bitmap) error { return nil }

type stubAseprite struct{}

func (stubAseprite) Decode(r io.Reader, name string) ([]*bitmap.Bitmap, error) {
	return []*bitmap.Bitmap{
		{Name: name, FrameIndex: 1, Width: 2, Height: 2, FrameW: 2, FrameH: 2, Indexed: make([]uint8, 4)},
		{Name: name, FrameIndex: 2, Width: 2, Height: 2, FrameW: 2, FrameH: 2, Indexed: make([]uint8, 4)},
	}, nil
}

func TestLoadWalksDirectoryInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "b.png"), []byte("b"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.png"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644))

	col := Collaborators{PNG: stubCodec{}, Aseprite: stubAseprite{}}
	bitmaps, err := Load([]string{dir}, "", col, Options{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, bitmaps, 2)
	require.Equal(t, "a", bitmaps[0].Name)
	require.Equal(t, "b", bitmaps[1].Name)
}

func TestLoadPrefixesOnlyNestedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "top.png"), []byte("a"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "sub", "nested.png"), []byte("b"), 0o644))

	col := Collaborators{PNG: stubCodec{}, Aseprite: stubAseprite{}}
	bitmaps, err := Load([]string{dir}, "", col, Options{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, bitmaps, 2)
	require.Equal(t, "sub/nested", bitmaps[0].Name)
	require.Equal(t, "top", bitmaps[1].Name)
}

func TestLoadDecodesAsepriteIntoMultipleFrames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "walk.aseprite"), []byte("x"), 0o644))

	col := Collaborators{PNG: stubCodec{}, Aseprite: stubAseprite{}}
	bitmaps, err := Load([]string{dir}, "", col, Options{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, bitmaps, 2)
	require.Equal(t, 1, bitmaps[0].FrameIndex)
	require.Equal(t, 2, bitmaps[1].FrameIndex)
}

func TestLoadAppliesTrimAndComputesHash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.png"), []byte("a"), 0o644))

	col := Collaborators{PNG: stubCodec{}, Aseprite: stubAseprite{}}
	bitmaps, err := Load([]string{dir}, "", col, Options{Trim: true}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, bitmaps, 1)
	require.NotZero(t, bitmaps[0].HashValue)
}
