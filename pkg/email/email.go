package email

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReminderData is everything a reminder template can refer to
type ReminderData struct {
	CompanyName   string
	CustomerName  string
	CustomerEmail string
	InvoiceNo     string
	IssueDate     time.Time
	DueDate       time.Time
	TotalAmount   decimal.Decimal
	BalanceAmount decimal.Decimal
	DaysOverdue   int
	RemindersSent int
}

// Message is a composed e-mail. Delivery is left to the caller.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Composer renders reminder messages from fixed per-type templates
type Composer struct {
	companyName string
	templates   map[enum.ReminderType]*reminderTemplate
	generic     *reminderTemplate
}

type reminderTemplate struct {
	subject *template.Template
	body    *template.Template
}

// NewComposer parses the reminder templates once
func NewComposer(companyName string) *Composer {
	return &Composer{
		companyName: companyName,
		templates: map[enum.ReminderType]*reminderTemplate{
			enum.ReminderTypePayment:     mustTemplate("payment", paymentSubject, paymentBody),
			enum.ReminderTypeFinalNotice: mustTemplate("final_notice", finalNoticeSubject, finalNoticeBody),
			enum.ReminderTypeThankYou:    mustTemplate("thank_you", thankYouSubject, thankYouBody),
		},
		generic: mustTemplate("generic", genericSubject, genericBody),
	}
}

// Compose renders the reminder for the given type. A non-empty customMessage
// replaces the type template entirely and gets the neutral invoice subject.
func (c *Composer) Compose(reminderType enum.ReminderType, data ReminderData, customMessage string) (*Message, error) {
	if data.CompanyName == "" {
		data.CompanyName = c.companyName
	}

	tmpl, ok := c.templates[reminderType]
	if !ok || customMessage != "" {
		tmpl = c.generic
	}

	subject, err := render(tmpl.subject, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render reminder subject: %w", err)
	}

	body := customMessage
	if body == "" {
		body, err = render(tmpl.body, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render reminder body: %w", err)
		}
	}

	return &Message{
		From:    data.CompanyName,
		To:      data.CustomerEmail,
		Subject: subject,
		Body:    body,
	}, nil
}

func mustTemplate(name, subject, body string) *reminderTemplate {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
	}
	return &reminderTemplate{
		subject: template.Must(template.New(name + "_subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New(name + "_body").Funcs(funcs).Parse(body)),
	}
}

func render(tmpl *template.Template, data ReminderData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const paymentSubject = `{{if gt .DaysOverdue 0}}Overdue: {{else}}Reminder: {{end}}Invoice {{.InvoiceNo}} from {{.CompanyName}}`

const paymentBody = `Dear {{.CustomerName}},

{{if gt .DaysOverdue 0}}Our records show that invoice {{.InvoiceNo}} was due on {{date .DueDate}} and is now {{.DaysOverdue}} day(s) overdue. The outstanding balance is {{money .BalanceAmount}}.

Please arrange payment at your earliest convenience.{{else}}This is a friendly reminder that invoice {{.InvoiceNo}} for {{money .TotalAmount}} is due on {{date .DueDate}}. The outstanding balance is {{money .BalanceAmount}}.{{end}}

If you have already paid, please disregard this message.

Regards,
{{.CompanyName}}
`

const finalNoticeSubject = `Final notice: Invoice {{.InvoiceNo}} from {{.CompanyName}}`

const finalNoticeBody = `Dear {{.CustomerName}},

Despite previous reminders, invoice {{.InvoiceNo}} issued on {{date .IssueDate}} remains unpaid{{if gt .DaysOverdue 0}}, {{.DaysOverdue}} day(s) past its due date{{end}}. The outstanding balance is {{money .BalanceAmount}}.

This is our final notice. Please settle the balance immediately to avoid further action.

Regards,
{{.CompanyName}}
`

const thankYouSubject = `Thank you for your payment: Invoice {{.InvoiceNo}}`

const thankYouBody = `Dear {{.CustomerName}},

Thank you for your payment towards invoice {{.InvoiceNo}}. We appreciate your business.

Regards,
{{.CompanyName}}
`

const genericSubject = `Invoice {{.InvoiceNo}} from {{.CompanyName}}`

const genericBody = `Dear {{.CustomerName}},

This message concerns invoice {{.InvoiceNo}} with an outstanding balance of {{money .BalanceAmount}}, due on {{date .DueDate}}.

Regards,
{{.CompanyName}}
`
