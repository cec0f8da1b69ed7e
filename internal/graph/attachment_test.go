package graph

import (
	"encoding/base64"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeContent(t *testing.T, att *Attachment) string {
	t.Helper()

	b, err := base64.StdEncoding.DecodeString(att.ContentBytes)
	require.NoError(t, err)

	return string(b)
}

func TestBuildAttachment_FromPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/notes.txt", []byte("hello"), 0o644))

	att, err := BuildAttachment(fs, AttachmentSource{Path: "/data/notes.txt"})
	require.NoError(t, err)

	assert.Equal(t, fileAttachmentType, att.ODataType)
	assert.Equal(t, "notes.txt", att.Name)
	assert.Contains(t, att.ContentType, "text/plain")
	assert.Equal(t, "hello", decodeContent(t, att))
	assert.False(t, att.IsInline)
	assert.Empty(t, att.ContentID)
}

func TestBuildAttachment_ExplicitNameAndType(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/blob", []byte{0x00, 0xff}, 0o644))

	att, err := BuildAttachment(fs, AttachmentSource{
		Path:        "/data/blob",
		Name:        "image.bin",
		ContentType: "image/x-custom",
	})
	require.NoError(t, err)
	assert.Equal(t, "image.bin", att.Name)
	assert.Equal(t, "image/x-custom", att.ContentType)
}

func TestBuildAttachment_UnknownExtensionFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/file.zzqq", []byte("x"), 0o644))

	att, err := BuildAttachment(fs, AttachmentSource{Path: "/data/file.zzqq"})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", att.ContentType)
}

func TestBuildAttachment_StringContentRoundTrip(t *testing.T) {
	att, err := BuildAttachment(nil, AttachmentSource{ContentText: "héllo wörld"})
	require.NoError(t, err)

	assert.Equal(t, "attachment", att.Name)
	assert.Equal(t, "application/octet-stream", att.ContentType)
	assert.Equal(t, "héllo wörld", decodeContent(t, att))
}

func TestBuildAttachment_BytesContent(t *testing.T) {
	att, err := BuildAttachment(nil, AttachmentSource{Content: []byte{1, 2, 3}, Name: "raw.bin"})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), att.ContentBytes)
}

func TestBuildAttachment_PathWinsOverContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.txt", []byte("from file"), 0o644))

	att, err := BuildAttachment(fs, AttachmentSource{Path: "/a.txt", ContentText: "from text"})
	require.NoError(t, err)
	assert.Equal(t, "from file", decodeContent(t, att))
}

func TestBuildAttachment_MissingSource(t *testing.T) {
	_, err := BuildAttachment(nil, AttachmentSource{Name: "x"})
	assert.ErrorIs(t, err, ErrAttachmentSource)
}

func TestBuildAttachment_MissingFile(t *testing.T) {
	_, err := BuildAttachment(afero.NewMemMapFs(), AttachmentSource{Path: "/nope.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nope.txt")
}

func TestBuildAttachment_InlineContentID(t *testing.T) {
	tests := []struct {
		name string
		src  AttachmentSource
		want string
	}{
		{"explicit", AttachmentSource{ContentText: "x", Name: "logo.png", ContentID: "logo"}, "logo"},
		{"from name", AttachmentSource{ContentText: "x", Name: "logo.png"}, "logo.png"},
		{"unnamed", AttachmentSource{ContentText: "x"}, "inline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src.Inline = true

			att, err := BuildAttachment(nil, tt.src)
			require.NoError(t, err)
			assert.True(t, att.IsInline)
			assert.Equal(t, tt.want, att.ContentID)
		})
	}
}
