package labels

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultPrinterPort is the raw print port of Zebra and SELBETI printers.
const DefaultPrinterPort = "9100"

// ErrNoPrinter is returned when no printer address is configured.
var ErrNoPrinter = errors.New("nenhuma impressora configurada")

// Printer sends ZPL to a network label printer.
type Printer struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewPrinter creates a printer for address ("host" or "host:port"). An empty
// address yields a printer whose Print always returns ErrNoPrinter.
func NewPrinter(address string, timeout time.Duration) *Printer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Printer{address: PrinterAddress(address), timeout: timeout}
}

// PrinterAddress adds the default raw port to a bare host.
func PrinterAddress(address string) string {
	if address == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, DefaultPrinterPort)
}

// Address returns the resolved host:port, or "" when unconfigured.
func (p *Printer) Address() string {
	return p.address
}

// Print writes the ZPL document to the printer. The whole exchange is bound
// by the printer timeout and ctx.
func (p *Printer) Print(ctx context.Context, zpl string) error {
	if p.address == "" {
		return ErrNoPrinter
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("connecting to printer %s: %w", p.address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("setting printer deadline: %w", err)
		}
	}
	if _, err := conn.Write([]byte(zpl)); err != nil {
		return fmt.Errorf("sending label to printer %s: %w", p.address, err)
	}
	return nil
}
