package intake

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"

	"podocs/internal/util"
)

// PDFAttachment is one PDF pulled out of a mail message, in attachment order.
type PDFAttachment struct {
	Name    string
	Content []byte
}

// ParsedMail is the intake view of one raw message: the subject and flattened
// body text used for detection, plus every PDF attachment.
type ParsedMail struct {
	Subject         string
	From            string
	Text            string
	PDFs            []PDFAttachment
	AttachmentNames []string
}

// ParseMailRaw decodes a raw RFC 5322 message. HTML-only bodies are flattened
// to text; table rows keep cell adjacency so labels stay next to their values.
func ParseMailRaw(raw []byte) (ParsedMail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return ParsedMail{}, err
	}

	parsed := ParsedMail{
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		Text:    env.Text,
	}
	if strings.TrimSpace(parsed.Text) == "" && env.HTML != "" {
		parsed.Text = flattenHTML(env.HTML)
	}

	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, att := range parts {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		parsed.AttachmentNames = append(parsed.AttachmentNames, filename)

		lower := strings.ToLower(filename)
		if strings.HasSuffix(lower, ".pdf") || att.ContentType == "application/pdf" {
			parsed.PDFs = append(parsed.PDFs, PDFAttachment{Name: filename, Content: att.Content})
		}
	}

	return parsed, nil
}

func flattenHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()

	var lines []string
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			if c := util.NormalizeSpaces(cell.Text()); c != "" {
				cells = append(cells, c)
			}
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	})
	doc.Find("table").Remove()

	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = util.NormalizeSpaces(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
