package graph

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	fileAttachmentType = "#microsoft.graph.fileAttachment"
	defaultContentType = "application/octet-stream"
)

// AttachmentSource describes one attachment before encoding. Exactly one of
// Path or content (Content, or ContentText when Content is nil) is used;
// Path wins when both are set.
type AttachmentSource struct {
	Path        string
	Content     []byte
	ContentText string
	Name        string
	ContentType string
	Inline      bool
	ContentID   string // referenced from HTML as <img src="cid:...">
}

// Attachment is a Graph fileAttachment ready for a sendMail payload.
type Attachment struct {
	ODataType    string `json:"@odata.type"` //nolint:tagliatelle // OData annotation key
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
	IsInline     bool   `json:"isInline,omitempty"`
	ContentID    string `json:"contentId,omitempty"`
}

// BuildAttachment reads and base64-encodes src. File paths are resolved
// through fsys; a nil fsys means the OS filesystem. The content type falls
// back from the explicit value, to a guess from the file extension, to
// application/octet-stream.
func BuildAttachment(fsys afero.Fs, src AttachmentSource) (*Attachment, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	var (
		data  []byte
		guess string
		name  = src.Name
	)

	switch {
	case src.Path != "":
		b, err := afero.ReadFile(fsys, src.Path)
		if err != nil {
			return nil, fmt.Errorf("graph: reading attachment %s: %w", src.Path, err)
		}

		data = b
		if name == "" {
			name = filepath.Base(src.Path)
		}

		guess = mime.TypeByExtension(filepath.Ext(src.Path))
	case src.Content != nil:
		data = src.Content
	case src.ContentText != "":
		data = []byte(src.ContentText)
	default:
		return nil, ErrAttachmentSource
	}

	contentType := src.ContentType
	if contentType == "" {
		contentType = guess
	}

	if contentType == "" {
		contentType = defaultContentType
	}

	// An unnamed inline attachment is referenced as cid:inline.
	contentID := src.ContentID
	if contentID == "" {
		contentID = name
	}

	if contentID == "" {
		contentID = "inline"
	}

	if name == "" {
		name = "attachment"
	}

	att := &Attachment{
		ODataType:    fileAttachmentType,
		Name:         name,
		ContentType:  contentType,
		ContentBytes: base64.StdEncoding.EncodeToString(data),
	}

	if src.Inline {
		att.IsInline = true
		att.ContentID = contentID
	}

	return att, nil
}
