package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/graph"
)

func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Send an email from a mailbox in the tenant",
		Long: `Send a message as --sender (default mail.default_sender) through the Graph
sendMail endpoint. --to, --cc and --bcc take comma-separated addresses.
Attachments that cannot be read are reported and skipped; the message is
still sent. Inline images are attached with --inline path[=content-id] and
referenced from an HTML body as <img src="cid:content-id">.`,
		Args: cobra.NoArgs,
		RunE: runMail,
	}

	cmd.Flags().String("sender", "", "sending mailbox (default from config)")
	cmd.Flags().String("to", "", "comma-separated To recipients")
	cmd.Flags().String("cc", "", "comma-separated Cc recipients")
	cmd.Flags().String("bcc", "", "comma-separated Bcc recipients")
	cmd.Flags().String("subject", "", "message subject")
	cmd.Flags().String("content-type", "text", "body content type: text or html")
	cmd.Flags().String("body", "", "message body")
	cmd.Flags().String("body-file", "", "read the message body from a file")
	cmd.Flags().String("priority", "", "importance: Low, Normal or High (default from config)")
	cmd.Flags().StringArray("attach", nil, "file to attach (repeatable)")
	cmd.Flags().StringArray("inline", nil, "inline image as path[=content-id] (repeatable)")
	cmd.Flags().Bool("save-to-sent", false, "save a copy in Sent Items")

	cmd.MarkFlagsMutuallyExclusive("body", "body-file")

	return cmd
}

// mailFlags collects the string flags of the mail command.
type mailFlags struct {
	sender, to, cc, bcc, subject, contentType, body, bodyFile, priority string
}

func runMail(cmd *cobra.Command, _ []string) error {
	msg, err := messageFromFlags(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}

	client, logger, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	outcome, err := client.SendMail(cmd.Context(), msg)

	logger.Debug("mail finished", "outcome", outcome.String())

	if outcome != graph.SendOK {
		return fmt.Errorf("email not sent (%s): %w", outcome, err)
	}

	statusf(flagQuiet, "Email sent to %d recipient(s)\n", len(graph.ParseRecipients(msg.To)))

	return nil
}

// messageFromFlags assembles a Message, filling sender and importance from
// config when the flags are not given. The body file is read through fsys.
func messageFromFlags(cmd *cobra.Command, fsys afero.Fs) (graph.Message, error) {
	var f mailFlags

	fields := []struct {
		flag string
		dst  *string
	}{
		{"sender", &f.sender},
		{"to", &f.to},
		{"cc", &f.cc},
		{"bcc", &f.bcc},
		{"subject", &f.subject},
		{"content-type", &f.contentType},
		{"body", &f.body},
		{"body-file", &f.bodyFile},
		{"priority", &f.priority},
	}

	for _, fl := range fields {
		v, err := cmd.Flags().GetString(fl.flag)
		if err != nil {
			return graph.Message{}, err
		}

		*fl.dst = v
	}

	if f.sender == "" && resolvedCfg != nil {
		f.sender = resolvedCfg.Mail.DefaultSender
	}

	if f.sender == "" {
		return graph.Message{}, errors.New("no sender: pass --sender or set mail.default_sender")
	}

	if len(graph.ParseRecipients(f.to)) == 0 {
		return graph.Message{}, errors.New("at least one --to recipient is required")
	}

	if f.priority == "" && resolvedCfg != nil {
		f.priority = resolvedCfg.Mail.DefaultImportance
	}

	if f.bodyFile != "" {
		b, err := afero.ReadFile(fsys, f.bodyFile)
		if err != nil {
			return graph.Message{}, fmt.Errorf("reading body file: %w", err)
		}

		f.body = string(b)
	}

	attachments, err := attachmentsFromFlags(cmd)
	if err != nil {
		return graph.Message{}, err
	}

	save, err := cmd.Flags().GetBool("save-to-sent")
	if err != nil {
		return graph.Message{}, err
	}

	return graph.Message{
		Sender:          f.sender,
		Subject:         f.subject,
		ContentType:     f.contentType,
		Body:            f.body,
		To:              f.to,
		Cc:              f.cc,
		Bcc:             f.bcc,
		Importance:      f.priority,
		Attachments:     attachments,
		SaveToSentItems: save,
	}, nil
}

func attachmentsFromFlags(cmd *cobra.Command) ([]graph.AttachmentSource, error) {
	files, err := cmd.Flags().GetStringArray("attach")
	if err != nil {
		return nil, err
	}

	inline, err := cmd.Flags().GetStringArray("inline")
	if err != nil {
		return nil, err
	}

	srcs := make([]graph.AttachmentSource, 0, len(files)+len(inline))

	for _, p := range files {
		srcs = append(srcs, graph.AttachmentSource{Path: p})
	}

	for _, arg := range inline {
		srcs = append(srcs, parseInline(arg))
	}

	return srcs, nil
}

// parseInline splits "path=cid". Without "=" the content ID defaults to the
// file name.
func parseInline(s string) graph.AttachmentSource {
	path, cid, _ := strings.Cut(s, "=")

	return graph.AttachmentSource{Path: path, Inline: true, ContentID: cid}
}
