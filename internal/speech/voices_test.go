package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoices_Choose(t *testing.T) {
	v := NewVoices(map[string]string{
		"es":    "voice-es",
		"pt-br": "voice-ptbr",
		"pt":    "voice-pt",
	}, "Bella")

	cases := []struct {
		lang string
		want string
	}{
		{"es", "voice-es"},
		{"es-mx", "voice-es"},
		{"pt-br", "voice-ptbr"},
		{"pt-pt", "voice-pt"},
		{"de", "Bella"},
		{"zz-yy", "Bella"},
		{"", "Bella"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, v.Choose(tc.lang), "lang %q", tc.lang)
	}
	assert.Equal(t, "Bella", v.Default())
}

func TestVoices_CopiesMap(t *testing.T) {
	src := map[string]string{"fr": "voice-fr"}
	v := NewVoices(src, "def")
	src["fr"] = "changed"

	assert.Equal(t, "voice-fr", v.Choose("fr"))
}
