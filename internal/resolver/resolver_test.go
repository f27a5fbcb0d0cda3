package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arpejfinder/residence-notifier/internal/models"
)

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "url_id_mapping.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMapping(t *testing.T) {
	path := writeMappingFile(t, "residence-one:101\n  residence-two:102  \n\nresidence-three:103")

	mapping, err := LoadMapping(path)

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"residence-one":   "101",
		"residence-two":   "102",
		"residence-three": "103",
	}, mapping)
}

func TestLoadMapping_MalformedLine(t *testing.T) {
	path := writeMappingFile(t, "residence-one:101\nno-colon-here\n")

	mapping, err := LoadMapping(path)

	assert.NoError(t, err)
	assert.Equal(t, "101", mapping["residence-one"])
	// A line without a colon still yields an entry, with an empty value.
	value, ok := mapping["no-colon-here"]
	assert.True(t, ok)
	assert.Equal(t, "", value)
}

func TestLoadMapping_ExtraColons(t *testing.T) {
	path := writeMappingFile(t, "residence-one:101:stale")

	mapping, err := LoadMapping(path)

	assert.NoError(t, err)
	assert.Equal(t, "101", mapping["residence-one"])
}

func TestLoadMapping_MissingFile(t *testing.T) {
	mapping, err := LoadMapping(filepath.Join(t.TempDir(), "does-not-exist.txt"))

	assert.Error(t, err)
	assert.Nil(t, mapping)
}

func TestSlugFromLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"trailing slash", "https://www.arpej.fr/residence/les-estudines/", "les-estudines"},
		{"no trailing slash", "https://www.arpej.fr/residence/les-estudines", "les-estudines"},
		{"root path", "https://www.arpej.fr/", "www.arpej.fr"},
		{"no slash at all", "les-estudines", ""},
		{"empty link", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugFromLink(tt.link))
		})
	}
}

func TestResolve(t *testing.T) {
	mapping := map[string]string{"les-estudines": "101"}

	known := models.Residence{Link: "https://www.arpej.fr/residence/les-estudines/"}
	assert.Equal(t, "101", Resolve(known, mapping))

	unknown := models.Residence{Link: "https://www.arpej.fr/residence/unmapped/"}
	assert.Equal(t, "", Resolve(unknown, mapping))
}
