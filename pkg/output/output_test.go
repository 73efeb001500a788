package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-phong-raytracer/pkg/config"
)

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"png", PNG},
		{".PNG", PNG},
		{"jpg", JPEG},
		{"jpeg", JPEG},
		{".tif", TIFF},
		{"tiff", TIFF},
		{"bmp", BMP},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}

	_, err := ParseFormat("webp")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = FormatFromPath("render")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, err := FormatFromPath("out/render.tiff")
	require.NoError(t, err)
	assert.Equal(t, TIFF, f)
	assert.Equal(t, "image/tiff", f.ContentType())
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := testImage(8, 4)
	depth := image.NewGray16(image.Rect(0, 0, 8, 4))
	depth.SetGray16(3, 2, color.Gray16{Y: 0xffff})

	for _, f := range []Format{PNG, JPEG, TIFF, BMP} {
		t.Run(string(f), func(t *testing.T) {
			path := filepath.Join(dir, "nested", "render."+string(f))
			require.NoError(t, Save(img, path, f))

			file, err := os.Open(path)
			require.NoError(t, err)
			defer file.Close()

			decoded, name, err := image.Decode(file)
			require.NoError(t, err)
			assert.Equal(t, string(f), name)
			assert.Equal(t, img.Bounds(), decoded.Bounds())

			// Depth renders must encode too
			require.NoError(t, Encode(io.Discard, depth, f))
		})
	}

	// Lossless formats keep pixels exactly
	file, err := os.Open(filepath.Join(dir, "nested", "render.png"))
	require.NoError(t, err)
	defer file.Close()
	decoded, _, err := image.Decode(file)
	require.NoError(t, err)
	r, g, b, _ := decoded.At(3, 2).RGBA()
	assert.Equal(t, [3]uint32{30 * 0x101, 20 * 0x101, 128 * 0x101}, [3]uint32{r, g, b})

	assert.ErrorIs(t, Encode(io.Discard, img, "gif"), ErrUnknownFormat)
}

func TestThumbnail(t *testing.T) {
	img := testImage(100, 50)

	thumb := Thumbnail(img, 20)
	assert.Equal(t, image.Rect(0, 0, 20, 10), thumb.Bounds())

	assert.Same(t, img, Thumbnail(img, 0))
	assert.Same(t, img, Thumbnail(img, 200))

	assert.Equal(t, "out/render_thumb.png", ThumbnailPath("out/render.png"))
}

// fakeS3 records PutObject calls
type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher_UploadImage(t *testing.T) {
	client := &fakeS3{}
	publisher := NewS3PublisherWithClient(client, "renders", "frames")

	key, err := publisher.UploadImage(context.Background(), "scene.png", testImage(4, 4), PNG)
	require.NoError(t, err)
	assert.Equal(t, "frames/scene.png", key)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "renders", aws.StringValue(input.Bucket))
	assert.Equal(t, "frames/scene.png", aws.StringValue(input.Key))
	assert.Equal(t, "image/png", aws.StringValue(input.ContentType))
	assert.Equal(t, int64(len(client.bodies[0])), aws.Int64Value(input.ContentLength))

	_, _, err = image.Decode(bytes.NewReader(client.bodies[0]))
	assert.NoError(t, err)
}

func TestS3Publisher_Errors(t *testing.T) {
	uploadErr := errors.New("access denied")
	publisher := NewS3PublisherWithClient(&fakeS3{err: uploadErr}, "renders", "")

	_, err := publisher.Upload(context.Background(), "a.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, uploadErr)
	assert.Contains(t, err.Error(), "a.png")

	_, err = NewS3Publisher(config.S3Config{})
	assert.ErrorIs(t, err, ErrS3Disabled)

	publisher, err = NewS3Publisher(config.S3Config{
		Bucket:         "renders",
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		ForcePathStyle: true,
		AccessKey:      "key",
		SecretKey:      "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "a.png", publisher.Key("a.png"))
}
