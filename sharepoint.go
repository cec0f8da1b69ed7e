package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/config"
	"github.com/runway28r/ms-graph-go/internal/graph"
)

const sitePathHelp = `A site path is either a site id or "hostname:/server-relative-path",
for example contoso.sharepoint.com:/sites/Marketing.`

func newSiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "site <site-path>",
		Short: "Resolve a SharePoint site path to its site id",
		Long:  "Resolve a SharePoint site path to its Graph site id.\n\n" + sitePathHelp,
		Args:  cobra.ExactArgs(1),
		RunE:  runSite,
	}
}

func newLibrariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "libraries <site-path>",
		Short: "List the document libraries of a site",
		Long:  "List the document libraries (drives) of a SharePoint site.\n\n" + sitePathHelp,
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraries,
	}
}

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <site-path>",
		Short: "List the root folder of a document library",
		Long:  "List the folders and files at the root of a document library.\n\n" + sitePathHelp,
		Args:  cobra.ExactArgs(1),
		RunE:  runLs,
	}

	cmd.Flags().String("library", "", "document library name (default sharepoint.default_library)")

	return cmd
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <site-path> <file>...",
		Short: "Upload local files into a document library",
		Long: `Upload one or more local files into a folder of a document library. The
current root content of the library is listed first. Each file is sent in a
single request, so files larger than sharepoint.max_upload_size are skipped.

` + sitePathHelp,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // site path plus at least one file
		RunE: runUpload,
	}

	cmd.Flags().String("library", "", "document library name (default sharepoint.default_library)")
	cmd.Flags().String("folder", "", "destination folder inside the library (default: root)")

	return cmd
}

// siteJSON is the JSON output schema for the site command.
type siteJSON struct {
	SitePath string `json:"site_path"`
	SiteID   string `json:"site_id"`
}

func runSite(cmd *cobra.Command, args []string) error {
	client, _, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	siteID, err := client.SiteID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(siteJSON{SitePath: args[0], SiteID: siteID})
	}

	fmt.Println(siteID)

	return nil
}

// driveJSON is the JSON output schema for one library.
type driveJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func runLibraries(cmd *cobra.Command, args []string) error {
	client, _, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	siteID, err := client.SiteID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	drives, err := client.DocumentLibraries(cmd.Context(), siteID)
	if err != nil {
		return err
	}

	if flagJSON {
		out := make([]driveJSON, 0, len(drives))
		for _, d := range drives {
			out = append(out, driveJSON(d))
		}

		return printJSON(out)
	}

	rows := make([][]string, 0, len(drives))
	for _, d := range drives {
		rows = append(rows, []string{d.Name, d.ID})
	}

	printTable(os.Stdout, []string{"NAME", "ID"}, rows)

	return nil
}

// itemJSON is the JSON output schema for one folder entry.
type itemJSON struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Size   int64  `json:"size"`
	WebURL string `json:"web_url,omitempty"`
}

func runLs(cmd *cobra.Command, args []string) error {
	client, _, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	siteID, drive, err := resolveLibrary(cmd.Context(), client, args[0], libraryFlag(cmd))
	if err != nil {
		return err
	}

	items, err := client.FolderContent(cmd.Context(), siteID, drive.ID)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(itemsJSON(items))
	}

	return graph.WriteFolderContent(os.Stdout, items)
}

func itemsJSON(items []graph.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))

	for i := range items {
		it := &items[i]

		kind := "other"
		switch {
		case it.IsFolder:
			kind = "folder"
		case it.IsFile:
			kind = "file"
		}

		out = append(out, itemJSON{Name: it.Name, Type: kind, Size: it.Size, WebURL: it.WebURL})
	}

	return out
}

// uploadResult is one line of the upload report.
type uploadResult struct {
	File   string `json:"file"`
	WebURL string `json:"web_url,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	folder, err := cmd.Flags().GetString("folder")
	if err != nil {
		return err
	}

	maxSize, err := config.ParseSize(resolvedCfg.SharePoint.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("sharepoint.max_upload_size: %w", err)
	}

	client, logger, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	siteID, drive, err := resolveLibrary(cmd.Context(), client, args[0], libraryFlag(cmd))
	if err != nil {
		return err
	}

	items, err := client.FolderContent(cmd.Context(), siteID, drive.ID)
	if err != nil {
		return err
	}

	if !flagJSON && !flagQuiet {
		if err := graph.WriteFolderContent(os.Stderr, items); err != nil {
			return err
		}
	}

	fsys := afero.NewOsFs()
	results := make([]uploadResult, 0, len(args)-1)
	failed := 0

	for _, local := range args[1:] {
		res := uploadResult{File: local}

		if err := checkUploadSize(fsys, local, maxSize); err != nil {
			res.Error = err.Error()
		} else if webURL, err := client.UploadFile(cmd.Context(), siteID, drive.ID, folder, local); err != nil {
			res.Error = err.Error()
		} else {
			res.WebURL = webURL
		}

		if res.Error != "" {
			failed++

			logger.Warn("upload skipped", "file", local, "error", res.Error)
			statusf(flagQuiet, "FAIL %s: %s\n", local, res.Error)
		} else {
			statusf(flagQuiet, "OK   %s -> %s\n", filepath.Base(local), res.WebURL)
		}

		results = append(results, res)
	}

	if flagJSON {
		if err := printJSON(results); err != nil {
			return err
		}
	}

	statusf(flagQuiet, "Upload summary: %d uploaded, %d failed\n", len(results)-failed, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(results))
	}

	return nil
}

// checkUploadSize rejects files above limit. Missing files pass through so
// UploadFile reports them as not found.
func checkUploadSize(fsys afero.Fs, path string, limit int64) error {
	info, err := fsys.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}

	if limit > 0 && info.Size() > limit {
		return fmt.Errorf("%s exceeds max_upload_size (%s)", formatSize(info.Size()), formatSize(limit))
	}

	return nil
}

func libraryFlag(cmd *cobra.Command) string {
	name, err := cmd.Flags().GetString("library")
	if err != nil || name == "" {
		return resolvedCfg.SharePoint.DefaultLibrary
	}

	return name
}

// resolveLibrary resolves the site and finds the named library, listing the
// available names when it does not exist.
func resolveLibrary(ctx context.Context, client *graph.Client, sitePath, library string) (string, graph.Drive, error) {
	siteID, err := client.SiteID(ctx, sitePath)
	if err != nil {
		return "", graph.Drive{}, err
	}

	drives, err := client.DocumentLibraries(ctx, siteID)
	if err != nil {
		return "", graph.Drive{}, err
	}

	drive, ok := graph.FindDrive(drives, library)
	if !ok {
		return "", graph.Drive{}, fmt.Errorf("document library %q not found on %s (available: %s)",
			library, sitePath, strings.Join(graph.DriveNames(drives), ", "))
	}

	return siteID, drive, nil
}
