package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"britta/internal/domain"
	"britta/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendReportEmail(ctx context.Context, email port.ReportEmail) error {
	rep := email.Report
	if rep == nil {
		return fmt.Errorf("report email without report")
	}

	subject := fmt.Sprintf("Momsrapport %s", rep.Period)
	if rep.Company.Name != "" {
		subject = fmt.Sprintf("Momsrapport %s för %s", rep.Period, rep.Company.Name)
	}
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	htmlBody := buildReportHTML(email.ToName, rep)
	textBody := buildReportText(email.ToName, rep)

	// Attachments require a raw MIME message; without one the simple
	// content type is enough.
	var content *types.EmailContent
	if len(email.Attachment) > 0 {
		raw, err := buildRawMessage(from, email.ToEmail, subject, textBody, htmlBody, email.Attachment, email.AttachmentName)
		if err != nil {
			return fmt.Errorf("building report email: %w", err)
		}
		content = &types.EmailContent{Raw: &types.RawMessage{Data: raw}}
	} else {
		content = &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		}
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{email.ToEmail},
		},
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

// buildRawMessage assembles a multipart/mixed MIME message: an alternative
// part with text and HTML bodies, followed by the attachment.
func buildRawMessage(from, to, subject, textBody, htmlBody string, attachment []byte, attachmentName string) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	alt := multipart.NewWriter(&buf)
	altHeader := textproto.MIMEHeader{}
	altHeader.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary()))
	if _, err := mixed.CreatePart(altHeader); err != nil {
		return nil, err
	}

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := alt.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(part, textBody)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=utf-8")
	part, err = alt.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(part, htmlBody)

	if err := alt.Close(); err != nil {
		return nil, err
	}

	if attachmentName == "" {
		attachmentName = "momsrapport.sie"
	}
	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", "application/octet-stream")
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName))
	part, err = mixed.CreatePart(attHeader)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		fmt.Fprintf(part, "%s\r\n", encoded[:76])
		encoded = encoded[76:]
	}
	fmt.Fprintf(part, "%s\r\n", encoded)

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildReportText(name string, rep *domain.VATReport) string {
	settle := fmt.Sprintf("Moms att betala: %.2f kr", rep.VAT.ToPay)
	if rep.VAT.ToRefund > 0 {
		settle = fmt.Sprintf("Moms att få tillbaka: %.2f kr", rep.VAT.ToRefund)
	}
	return fmt.Sprintf(`Hej %s,

Här är momsrapporten för %s.

Försäljning: %.2f kr
Kostnader: %.2f kr
Resultat: %.2f kr
%s

SIE-filen är bifogad och kan importeras i Fortnox eller Visma.

Britta`,
		name, rep.Period,
		rep.Summary.TotalIncome, rep.Summary.TotalCosts, rep.Summary.Result,
		settle)
}

func buildReportHTML(name string, rep *domain.VATReport) string {
	settleLabel := "Moms att betala"
	settleAmount := rep.VAT.ToPay
	if rep.VAT.ToRefund > 0 {
		settleLabel = "Moms att få tillbaka"
		settleAmount = rep.VAT.ToRefund
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Momsrapport %s</h2>
  <p>Hej %s,</p>
  <p>Här är momsrapporten för %s.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;">Försäljning</td><td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f kr</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;">Kostnader</td><td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f kr</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;">Resultat</td><td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f kr</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">%s</td><td style="padding: 8px; text-align: right; font-weight: bold;">%.2f kr</td></tr>
  </table>
  <p>SIE-filen är bifogad och kan importeras i Fortnox eller Visma.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Britta - Momsrapportering för laddoperatörer</p>
</body>
</html>`,
		rep.Period, name, rep.Period,
		rep.Summary.TotalIncome, rep.Summary.TotalCosts, rep.Summary.Result,
		settleLabel, settleAmount)
}
