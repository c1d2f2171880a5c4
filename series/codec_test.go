package series

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/declinecurve/errs"
)

func TestCompressionNames(t *testing.T) {
	for _, c := range compressions {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}

	got, err := ParseCompression(" ZSTD ")
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, got)

	_, err = ParseCompression("gzip")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Equal(t, "Compression(0)", Compression(0).String())

	_, err = CodecFor(Compression(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) //nolint:gosec
	noise := make([]byte, 4096)
	rng.Read(noise)

	inputs := map[string][]byte{
		"empty":     {},
		"repeating": bytes.Repeat([]byte("q_end=172.30;"), 500),
		"noise":     noise,
		"one byte":  {0x42},
	}

	for _, c := range compressions {
		codec, err := CodecFor(c)
		require.NoError(t, err)

		for name, in := range inputs {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				packed, err := codec.Compress(in)
				require.NoError(t, err)

				out, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Len(t, out, len(in))
				if len(in) > 0 {
					require.Equal(t, in, out)
				}
			})
		}
	}
}

func TestCodecShrinksRepetitiveData(t *testing.T) {
	in := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 2048)
	for _, c := range []Compression{CompressionZstd, CompressionS2, CompressionLZ4} {
		codec, err := CodecFor(c)
		require.NoError(t, err)
		packed, err := codec.Compress(in)
		require.NoError(t, err)
		require.Less(t, len(packed), len(in)/10, c)
	}
}

func TestLZ4RejectsUnknownMarker(t *testing.T) {
	_, err := lz4Codec{}.Decompress([]byte{0x7, 1, 2})
	require.ErrorIs(t, err, errs.ErrInvalidSeries)
}

func TestZstdRejectsGarbage(t *testing.T) {
	_, err := zstdCodec{}.Decompress([]byte("not a zstd frame"))
	require.Error(t, err)
}
