package pbr

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a_nohq.tga", FormatTGA},
		{"a_nohq.TGA", FormatTGA},
		{"dir/a_smdi.tif", FormatTIFF},
		{"a_smdi.TIFF", FormatTIFF},
		{"a_co.Png", FormatPNG},
	}

	for _, test := range tests {
		got, err := FormatFromPath(test.path)
		if err != nil || got != test.want {
			t.Errorf("FormatFromPath(%q) = %v, %v; want %v", test.path, got, err, test.want)
		}
	}

	for _, path := range []string{"a_co.jpg", "a_co", "a_co.dds"} {
		if _, err := FormatFromPath(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatFromPath(%q) err = %v, want unsupported format", path, err)
		}
	}
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats("png, TGA,,png,tiff")
	if err != nil {
		t.Fatal(err)
	}

	want := []Format{FormatPNG, FormatTGA, FormatTIFF}
	if len(formats) != len(want) {
		t.Fatalf("got %v, want %v", formats, want)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Errorf("format %d = %v, want %v", i, formats[i], want[i])
		}
	}

	for _, list := range []string{"", " , ", "png,jpg"} {
		if _, err := ParseFormats(list); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormats(%q) err = %v", list, err)
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec()
	defer codec.Close()

	src := patternImage(9, 4, 5)
	src.SetNRGBA(0, 0, color.NRGBA{R: 12, G: 34, B: 56, A: 0})
	src.SetNRGBA(8, 3, color.NRGBA{R: 255, G: 1, B: 128, A: 0})
	tex := textureFromNRGBA(src)

	dir := t.TempDir()
	for _, format := range AllFormats {
		t.Run(format.String(), func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := codec.Encode(buf, tex.NRGBA(), format); err != nil {
				t.Fatal(err)
			}
			img, err := codec.Decode(buf, format)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != 9 || img.Bounds().Dy() != 4 {
				t.Errorf("decoded size = %v", img.Bounds())
			}

			path := filepath.Join(dir, "x_NMO"+format.Ext())
			if err := codec.Save(path, tex); err != nil {
				t.Fatal(err)
			}
			loaded, err := codec.LoadTexture(path, 9, 4)
			if err != nil {
				t.Fatal(err)
			}

			for y := 0; y < 4; y++ {
				for x := 0; x < 9; x++ {
					if got, want := loaded.PixelAt(x, y), tex.PixelAt(x, y); got != want {
						t.Errorf("PixelAt(%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestCodecLoadErrors(t *testing.T) {
	codec := NewCodec()
	defer codec.Close()

	dir := t.TempDir()
	corrupt := filepath.Join(dir, "bad_co.tif")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want error
	}{
		{filepath.Join(dir, "missing_co.png"), ErrImageLoad},
		{corrupt, ErrImageLoad},
		{filepath.Join(dir, "x_co.bmp"), ErrUnsupportedFormat},
	}

	for _, test := range tests {
		if _, err := codec.Load(test.path); !errors.Is(err, test.want) {
			t.Errorf("Load(%s) err = %v, want %v", filepath.Base(test.path), err, test.want)
		}
	}
}

func TestCodecSaveError(t *testing.T) {
	codec := NewCodec()
	defer codec.Close()

	path := filepath.Join(t.TempDir(), "missing", "x_NMO.png")
	if err := codec.Save(path, NewTexture(2, 2)); !errors.Is(err, ErrImageSave) {
		t.Errorf("err = %v, want image save error", err)
	}
}

func TestCodecClosed(t *testing.T) {
	codec := NewCodec()
	codec.Close()

	path := filepath.Join(t.TempDir(), "x_NMO.png")
	if err := codec.Save(path, NewTexture(2, 2)); !errors.Is(err, ErrImageSave) {
		t.Errorf("Save err = %v, want image save error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial output was not removed")
	}
}

func TestWriterRobust(t *testing.T) {
	codec := NewCodec()
	defer codec.Close()

	dir := t.TempDir()
	// A directory in place of an output makes that save fail.
	if err := os.Mkdir(filepath.Join(dir, "x_NMO.tif"), 0755); err != nil {
		t.Fatal(err)
	}

	tex := NewTexture(4, 4)
	w := &Writer{Codec: codec, Dir: dir, Formats: AllFormats, Robust: true}

	written, err := w.Write("x", tex, tex)
	if !errors.Is(err, ErrImageSave) {
		t.Errorf("err = %v, want image save error", err)
	}
	if len(written) != 5 {
		t.Errorf("robust writer wrote %v", written)
	}

	w.Robust = false
	written, err = w.Write("x", tex, tex)
	if !errors.Is(err, ErrImageSave) {
		t.Errorf("err = %v, want image save error", err)
	}
	if len(written) != 2 {
		t.Errorf("strict writer wrote %v", written)
	}
}

func TestMoveResults(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a_NMO.png", "a_BCR.png")

	result := filepath.Join(dir, "PBR_Result")
	moved, err := MoveResults([]string{
		filepath.Join(dir, "a_NMO.png"),
		filepath.Join(dir, "gone_BCR.png"),
		filepath.Join(dir, "a_BCR.png"),
	}, result)
	if !errors.Is(err, ErrFilesystem) {
		t.Errorf("err = %v, want filesystem error", err)
	}

	if len(moved) != 2 {
		t.Fatalf("moved = %v", moved)
	}
	for _, path := range moved {
		if filepath.Dir(path) != result {
			t.Errorf("%s not in result directory", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
}
