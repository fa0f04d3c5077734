package mailing

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"WA-Order-Bot/domain"

	"gopkg.in/gomail.v2"
)

type (
	MailConfig struct {
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
		NotifyEmail  string
		Currency     string
	}

	// Mailer sends new-order notifications to the shop owner.
	Mailer struct {
		config MailConfig
		send   func(*gomail.Message) error
	}
)

func NewMailer(config MailConfig) (*Mailer, error) {
	port, err := strconv.Atoi(config.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %w", config.SMTPPort, err)
	}
	dialer := gomail.NewDialer(
		config.SMTPHost,
		port,
		config.SMTPEmail,
		config.SMTPPassword,
	)
	return &Mailer{config: config, send: func(m *gomail.Message) error { return dialer.DialAndSend(m) }}, nil
}

func (m *Mailer) SendMail(toEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	return m.send(mailer)
}

func (m *Mailer) NotifyNewOrder(order domain.OrderResponse) error {
	body, err := RenderOrderEmail(order, m.config.Currency)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New order %s from %s", order.OrderNumber, order.CustomerPhone)
	return m.SendMail(m.config.NotifyEmail, subject, body)
}

var orderTemplate = template.Must(template.New("order").Parse(`<h2>New order {{.Order.OrderNumber}}</h2>
<p>Customer: {{if .Order.CustomerName}}{{.Order.CustomerName}} {{end}}({{.Order.CustomerPhone}})</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Subtotal</th></tr>
{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{$.Currency}} {{.UnitPrice.StringFixed 2}}</td><td>{{$.Currency}} {{.Subtotal.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Currency}} {{.Order.Total.StringFixed 2}}</strong></p>
{{if .Order.Notes}}<p>Notes: {{.Order.Notes}}</p>{{end}}`))

func RenderOrderEmail(order domain.OrderResponse, currency string) (string, error) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, struct {
		Order    domain.OrderResponse
		Currency string
	}{order, currency})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
