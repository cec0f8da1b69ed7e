package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// siteResponse mirrors the Graph site JSON for the fields we use.
type siteResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

type driveResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type drivesListResponse struct {
	Value []driveResponse `json:"value"`
}

// driveItemResponse mirrors the Graph driveItem JSON. The presence of the
// folder or file facet decides the item kind.
type driveItemResponse struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Size   int64        `json:"size"`
	WebURL string       `json:"webUrl"`
	Folder *folderFacet `json:"folder"`
	File   *fileFacet   `json:"file"`
}

type folderFacet struct {
	ChildCount int `json:"childCount"`
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

func (d *driveItemResponse) toItem() Item {
	return Item{
		ID:       d.ID,
		Name:     d.Name,
		Size:     d.Size,
		WebURL:   d.WebURL,
		IsFolder: d.Folder != nil,
		IsFile:   d.File != nil,
	}
}

type listChildrenResponse struct {
	Value    []driveItemResponse `json:"value"`
	NextLink string              `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// encodePathSegments URL-encodes each segment of a slash-separated path.
// Empty segments from leading, trailing or doubled slashes are dropped.
func encodePathSegments(path string) string {
	var segments []string

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}

		segments = append(segments, url.PathEscape(seg))
	}

	return strings.Join(segments, "/")
}

// SiteID resolves a site path such as
// "contoso.sharepoint.com:/sites/Marketing" to its Graph site id.
func (c *Client) SiteID(ctx context.Context, sitePath string) (string, error) {
	c.logger.Debug("resolving site", slog.String("site", sitePath))

	// Site ids and hostnames are sent as-is; only the server-relative path
	// of the host:/path form is escaped.
	host, rel, hasRel := strings.Cut(sitePath, ":")

	path := "/sites/" + host
	if hasRel {
		path += ":/" + encodePathSegments(rel)
	}

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("graph: resolving site %s: %w", sitePath, err)
	}
	defer resp.Body.Close()

	var sr siteResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("graph: decoding site response: %w", err)
	}

	if sr.ID == "" {
		return "", fmt.Errorf("graph: site %s: response has no id", sitePath)
	}

	c.logger.Debug("resolved site",
		slog.String("site_id", sr.ID),
		slog.String("display_name", sr.DisplayName),
	)

	return sr.ID, nil
}

// DocumentLibraries lists the drives (document libraries) of a site.
func (c *Client) DocumentLibraries(ctx context.Context, siteID string) ([]Drive, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/sites/"+siteID+"/drives", nil)
	if err != nil {
		return nil, fmt.Errorf("graph: listing document libraries: %w", err)
	}
	defer resp.Body.Close()

	var dl drivesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&dl); err != nil {
		return nil, fmt.Errorf("graph: decoding drives response: %w", err)
	}

	drives := make([]Drive, 0, len(dl.Value))
	for _, d := range dl.Value {
		drives = append(drives, Drive{ID: d.ID, Name: d.Name})
	}

	c.logger.Debug("listed document libraries",
		slog.String("site_id", siteID),
		slog.Int("count", len(drives)),
	)

	return drives, nil
}

// FindDrive returns the drive called name. Library names are unique within
// a site; the comparison is exact.
func FindDrive(drives []Drive, name string) (Drive, bool) {
	for _, d := range drives {
		if d.Name == name {
			return d, true
		}
	}

	return Drive{}, false
}

// DriveNames returns the names of drives in listing order.
func DriveNames(drives []Drive) []string {
	names := make([]string, len(drives))
	for i, d := range drives {
		names[i] = d.Name
	}

	return names
}

// FolderContent lists the immediate children of a drive's root folder,
// following @odata.nextLink for libraries with many entries.
func (c *Client) FolderContent(ctx context.Context, siteID, driveID string) ([]Item, error) {
	next := fmt.Sprintf("%s/sites/%s/drives/%s/root/children", c.baseURL, siteID, driveID)

	var items []Item

	for next != "" {
		resp, err := c.do(ctx, request{method: http.MethodGet, url: next})
		if err != nil {
			return nil, fmt.Errorf("graph: listing folder content: %w", err)
		}

		var page listChildrenResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()

		if err != nil {
			return nil, fmt.Errorf("graph: decoding children response: %w", err)
		}

		for i := range page.Value {
			items = append(items, page.Value[i].toItem())
		}

		next = page.NextLink
	}

	c.logger.Debug("listed folder content",
		slog.String("drive_id", driveID),
		slog.Int("count", len(items)),
	)

	return items, nil
}

// WriteFolderContent prints the folder names and then the file names of
// items, each group sorted alphabetically and preceded by its count.
// Items with neither facet are not shown.
func WriteFolderContent(w io.Writer, items []Item) error {
	var folders, files []string

	for _, it := range items {
		switch {
		case it.IsFolder:
			folders = append(folders, it.Name)
		case it.IsFile:
			files = append(files, it.Name)
		}
	}

	sort.Strings(folders)
	sort.Strings(files)

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Folders: %d\n", len(folders))

	for _, name := range folders {
		fmt.Fprintf(&buf, "  %s/\n", name)
	}

	fmt.Fprintf(&buf, "Files: %d\n", len(files))

	for _, name := range files {
		fmt.Fprintf(&buf, "  %s\n", name)
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// UploadFile uploads localPath into folderPath of the drive in a single PUT
// and returns the new item's webUrl. An empty folderPath targets the drive
// root. A missing local file fails with ErrFileNotFound before any request
// is made. Files beyond Graph's simple-upload limit are rejected by the
// server.
func (c *Client) UploadFile(ctx context.Context, siteID, driveID, folderPath, localPath string) (string, error) {
	info, err := c.fsys.Stat(localPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, localPath)
	}

	data, err := afero.ReadFile(c.fsys, localPath)
	if err != nil {
		return "", fmt.Errorf("graph: reading %s: %w", localPath, err)
	}

	target := encodePathSegments(folderPath + "/" + filepath.Base(localPath))
	uploadURL := fmt.Sprintf("%s/sites/%s/drives/%s/root:/%s:/content",
		c.baseURL, siteID, driveID, target)

	c.logger.Info("uploading file",
		slog.String("local_path", localPath),
		slog.String("target", target),
		slog.Int64("size", int64(len(data))),
	)

	resp, err := c.do(ctx, request{
		method:      http.MethodPut,
		url:         uploadURL,
		contentType: "application/octet-stream",
		body:        bytes.NewReader(data),
	})
	if err != nil {
		c.logger.Error("upload failed",
			slog.String("local_path", localPath),
			slog.String("error", err.Error()),
		)

		return "", fmt.Errorf("graph: uploading %s: %w", localPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort read for error message

		return "", &GraphError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Header.Get("request-id"),
			Message:    string(body),
			Err:        ErrUnexpectedStatus,
		}
	}

	var ir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", fmt.Errorf("graph: decoding upload response: %w", err)
	}

	c.logger.Info("uploaded file",
		slog.String("name", ir.Name),
		slog.String("web_url", ir.WebURL),
	)

	return ir.WebURL, nil
}
