// Package mailer is the notification sink for district submissions. It is
// best-effort by contract: an unconfigured SMTP setup logs a preview and
// reports Skipped, and no failure in here may ever fail the submission that
// triggered it.
package mailer

import (
	"crypto/tls"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"district_platform/internals/configs"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Result struct {
	OK      bool
	Skipped bool
}

// Row is one label/value line of the rendered submission table.
type Row struct {
	Label string
	Value string
}

// IsConfigured reports whether the SMTP transport has everything it needs.
func IsConfigured() bool {
	return configs.SMTPHost != "" && configs.SMTPPort != "" &&
		configs.SMTPUser != "" && configs.SMTPPass != ""
}

// SendSubmissionEmail delivers msg over SMTP. Unconfigured transports skip
// with a log preview instead of erroring.
func SendSubmissionEmail(msg Message) (Result, error) {
	if !IsConfigured() {
		preview := msg.HTML
		if len(preview) > 400 {
			preview = preview[:400]
		}
		log.Printf("[EMAIL NOT CONFIGURED] would send to=%s subject=%q preview=%s", msg.To, msg.Subject, preview)
		return Result{Skipped: true}, nil
	}

	from := configs.SMTPFrom
	if from == "" {
		from = configs.SMTPUser
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	addr := configs.SMTPHost + ":" + configs.SMTPPort
	auth := smtp.PlainAuth("", configs.SMTPUser, configs.SMTPPass, configs.SMTPHost)
	if err := send(addr, auth, from, msg.To, []byte(b.String())); err != nil {
		return Result{}, err
	}
	return Result{OK: true}, nil
}

// transportSecure reports whether SMTP_SECURE asks for implicit TLS
// (port 465 style). Anything but "true" means plain dial with
// opportunistic STARTTLS.
func transportSecure() bool {
	return strings.EqualFold(strings.TrimSpace(configs.SMTPSecure), "true")
}

func send(addr string, auth smtp.Auth, from, to string, body []byte) error {
	if !transportSecure() {
		return smtp.SendMail(addr, auth, from, []string{to}, body)
	}
	return sendImplicitTLS(addr, auth, from, to, body)
}

// sendImplicitTLS speaks SMTP over an already-encrypted connection, which
// smtp.SendMail cannot do (it only upgrades via STARTTLS).
func sendImplicitTLS(addr string, auth smtp.Auth, from, to string, body []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: configs.SMTPHost})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, configs.SMTPHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// BuildSubmissionHTML renders the admin notification: district, template,
// timestamp, then the field/value table. Everything user-entered is escaped.
func BuildSubmissionHTML(districtName, templateName, sentAt string, rows []Row) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; line-height:1.4">`)
	b.WriteString(`<h2>District Submission</h2>`)
	fmt.Fprintf(&b, `<p><b>District:</b> %s</p>`, html.EscapeString(districtName))
	fmt.Fprintf(&b, `<p><b>Template:</b> %s</p>`, html.EscapeString(templateName))
	fmt.Fprintf(&b, `<p><b>Sent at:</b> %s</p>`, html.EscapeString(sentAt))
	b.WriteString(`<table border="1" cellpadding="8" cellspacing="0" style="border-collapse:collapse">`)
	b.WriteString(`<thead><tr><th align="left">Field</th><th align="left">Value</th></tr></thead><tbody>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(r.Label), html.EscapeString(r.Value))
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}
