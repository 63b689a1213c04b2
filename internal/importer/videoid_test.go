package importer

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch extra params", "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"mobile", "http://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short with time", "https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"no scheme", "youtu.be/a-b_c1234_Z", "a-b_c1234_Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVideoID_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"https://vimeo.com/123456",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/watch?list=PL123",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"ftp://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/",
		"https://youtu.be/dQw4w9WgXcQ/extra",
		"not a url",
	} {
		_, err := ParseVideoID(raw)
		assert.ErrorIs(t, err, ErrInvalidSourceURL, raw)
		assert.Equal(t, KindInvalidSourceURL, KindOf(err), raw)
	}
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func genVideoID() gopter.Gen {
	return gen.SliceOfN(11, gen.IntRange(0, len(idAlphabet)-1)).Map(func(idx []int) string {
		var b strings.Builder
		for _, i := range idx {
			b.WriteByte(idAlphabet[i])
		}
		return b.String()
	})
}

func TestParseVideoID_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("both url forms yield the embedded id", prop.ForAll(
		func(id string, short bool) bool {
			raw := "https://www.youtube.com/watch?v=" + id
			if short {
				raw = "https://youtu.be/" + id
			}
			got, err := ParseVideoID(raw)
			return err == nil && got == id
		},
		genVideoID(),
		gen.Bool(),
	))

	properties.Property("other hosts are rejected", prop.ForAll(
		func(id, host string) bool {
			_, err := ParseVideoID("https://" + strings.ToLower(host) + ".example/watch?v=" + id)
			return KindOf(err) == KindInvalidSourceURL
		},
		genVideoID(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
