package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairpilot/embedding/testutil"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero a", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero b", []float32{1, 1}, []float32{0, 0}, 0},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilaritySymmetricAndBounded(t *testing.T) {
	vectors := [][]float32{
		{0.3, -0.2, 0.9},
		{-1, 4, 2.5},
		{1e-3, 1e-3, -1e-3},
		{7, 7, 7},
	}
	for i := range vectors {
		for j := range vectors {
			ab, err := CosineSimilarity(vectors[i], vectors[j])
			require.NoError(t, err)
			ba, err := CosineSimilarity(vectors[j], vectors[i])
			require.NoError(t, err)

			assert.InDelta(t, ab, ba, 1e-12, "not symmetric for %d,%d", i, j)
			assert.LessOrEqual(t, ab, 1.0)
			assert.GreaterOrEqual(t, ab, -1.0)
		}
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestVectorCodecRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, math.MaxFloat32, float32(math.Inf(-1))}
	blob := EncodeVector(in)
	require.Len(t, blob, 4*len(in))

	out, err := DecodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeVectorLittleEndian(t *testing.T) {
	// 1.0 is 0x3f800000.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, EncodeVector([]float32{1}))
}

func TestDecodeVectorRejectsMalformed(t *testing.T) {
	_, err := DecodeVector(nil)
	assert.Error(t, err)
	_, err = DecodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
	_, err = DecodeVector([]byte{1, 2, 3, 4, 5})
	assert.Error(t, err)
}

func TestPrepareText(t *testing.T) {
	assert.Equal(t, "a b c", PrepareText("  a\nb\r\nc \n"))
	assert.Equal(t, "", PrepareText("\n\n  "))

	long := strings.Repeat("é", MaxInputChars+10)
	assert.Equal(t, MaxInputChars, len([]rune(PrepareText(long))))
}

func TestEmbedHelper(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeEngine()

	_, err := Embed(ctx, fake, " \n ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, fake.Calls(), "engine must not be called for empty input")

	vec, err := Embed(ctx, fake, "hello\nworld")
	require.NoError(t, err)
	assert.Len(t, vec, 256)
	assert.Equal(t, []string{"hello world"}, fake.Calls())

	fake.Fixed = map[string][]float32{"blank": {}}
	_, err = Embed(ctx, fake, "blank")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)

	boom := errors.New("boom")
	fake.Err = boom
	_, err = Embed(ctx, fake, "anything")
	assert.ErrorIs(t, err, boom)
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "openai default model", cfg: Config{Provider: "openai", APIKey: "k"}, want: "openai:text-embedding-3-small"},
		{name: "openai missing key", cfg: Config{Provider: "openai"}, wantErr: true},
		{name: "ollama", cfg: Config{Provider: "ollama", Model: "mxbai-embed-large"}, want: "ollama:mxbai-embed-large"},
		{name: "genai missing key", cfg: Config{Provider: "genai"}, wantErr: true},
		{name: "unknown", cfg: Config{Provider: "cohere"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, engine.Name())
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero([]float32{0, 0}))
	assert.True(t, IsZero(nil))
	assert.False(t, IsZero([]float32{0, 1e-9}))
}
