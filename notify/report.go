package notify

import (
	"fmt"
	"os"
	"path/filepath"
)

const reportSubject = "Summary of Key Regulatory Changes"

// Report file names as written by the comparison run.
var reportAttachments = []string{"sub_theme_level.csv", "theme_level.csv"}

// ReportMessage builds the outgoing message for a saved comparison report.
// The document-level summary becomes the body and the sub-theme and theme
// CSVs are attached.
func ReportMessage(dir string, recipients []string) (*Message, error) {
	summary, err := os.ReadFile(filepath.Join(dir, "document_level.txt"))
	if err != nil {
		return nil, fmt.Errorf("reading report summary: %w", err)
	}

	msg := &Message{
		To:      recipients,
		Subject: reportSubject,
		Body:    string(summary),
	}

	for _, name := range reportAttachments {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading report attachment: %w", err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Name:        name,
			ContentType: "text/csv",
			Content:     content,
		})
	}

	return msg, nil
}
