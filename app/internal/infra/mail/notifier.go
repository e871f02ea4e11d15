// Package mail sends order confirmations over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

// SendFunc has the signature of smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type CustomerFinder interface {
	GetByClientNumber(ctx context.Context, clientNumber string) (*domcustomer.Customer, error)
}

type Config struct {
	Addr     string
	Username string
	Password string
	From     string
}

// Notifier e-mails the customer on file for each new order. Customers
// without an address are skipped.
type Notifier struct {
	cfg       Config
	auth      smtp.Auth
	customers CustomerFinder
	send      SendFunc
	logger    *zap.Logger
}

func NewNotifier(cfg Config, customers CustomerFinder, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			host = cfg.Addr
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return &Notifier{
		cfg:       cfg,
		auth:      auth,
		customers: customers,
		send:      smtp.SendMail,
		logger:    logger,
	}
}

func (n *Notifier) OrderCreated(ctx context.Context, o *domorder.Order) error {
	c, err := n.customers.GetByClientNumber(ctx, o.ClientNumber)
	if errors.Is(err, domcustomer.ErrCustomerNotFound) {
		n.logger.Debug("no customer for order confirmation", zap.String("order_number", o.OrderNumber))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find customer %s: %w", o.ClientNumber, err)
	}
	if c.Email == "" {
		n.logger.Debug("customer has no email", zap.String("client_number", c.ClientNumber))
		return nil
	}

	msg := buildMessage(n.cfg.From, c.Email, o, time.Now())
	if err := n.send(n.cfg.Addr, n.auth, n.cfg.From, []string{c.Email}, msg); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", o.OrderNumber, err)
	}
	n.logger.Info("order confirmation sent",
		zap.String("order_number", o.OrderNumber),
		zap.String("to", c.Email),
	)
	return nil
}

func buildMessage(from, to string, o *domorder.Order, now time.Time) []byte {
	var b bytes.Buffer
	subject := mime.QEncoding.Encode("utf-8", "Confirmación de pedido "+o.OrderNumber)

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Hola %s,\r\n\r\n", o.ClientName)
	fmt.Fprintf(&b, "Recibimos tu pedido %s.\r\n\r\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %s x%s  $%s\r\n", it.ProductName, strconv.FormatInt(it.Quantity, 10), money(it.LineTotal))
	}
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Subtotal: $%s\r\n", money(o.Subtotal))
	fmt.Fprintf(&b, "IVA (16%%): $%s\r\n", money(o.Tax))
	fmt.Fprintf(&b, "Total: $%s\r\n\r\n", money(o.Total))
	b.WriteString("Gracias por tu compra.\r\nCleanTec\r\n")
	return b.Bytes()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
