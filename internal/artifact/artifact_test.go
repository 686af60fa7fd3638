package artifact

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorValidate(t *testing.T) {
	valid := Descriptor{Ref: "artwork-1", Kind: KindArtwork, Text: "some material"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		d    Descriptor
	}{
		{"missing ref", Descriptor{Kind: KindArtwork, Text: "x"}},
		{"missing text", Descriptor{Ref: "a", Kind: KindArtwork}},
		{"whitespace text", Descriptor{Ref: "a", Kind: KindArtwork, Text: "   "}},
		{"unknown kind", Descriptor{Ref: "a", Kind: "profile", Text: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.d.Validate())
		})
	}
}

func TestFromBioHTML(t *testing.T) {
	owner := uuid.New()
	html := `<html>
	<head><title>Mara Voss</title><script>track()</script></head>
	<body>
		<nav>Home | Works</nav>
		<h1>Mara Voss</h1>
		<p>Mara paints   large-scale
		seascapes in oil.</p>
		<footer>Copyright</footer>
	</body>
	</html>`

	d, err := FromBioHTML("bio-mara", owner, html)
	require.NoError(t, err)

	assert.Equal(t, "bio-mara", d.Ref)
	assert.Equal(t, KindBio, d.Kind)
	assert.Equal(t, "Mara Voss", d.Title)
	assert.Equal(t, owner, d.OwnerID)
	assert.Equal(t, "Mara Voss Mara paints large-scale seascapes in oil.", d.Text)
	assert.NotContains(t, d.Text, "track()")
	assert.NotContains(t, d.Text, "Copyright")
	assert.NoError(t, d.Validate())
}

func TestFromBioHTML_Fragment(t *testing.T) {
	d, err := FromBioHTML("bio-frag", uuid.New(), "<p>Works in charcoal and ink.</p>")
	require.NoError(t, err)
	assert.Equal(t, "Works in charcoal and ink.", d.Text)
}

func TestFromBioHTML_NoText(t *testing.T) {
	_, err := FromBioHTML("bio-empty", uuid.New(), "<html><body><script>x</script></body></html>")
	assert.Error(t, err)
}
