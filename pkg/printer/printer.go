package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// Supported PRINTER_TYPE values.
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeNone    = "none"
)

// Printer sends raw ESC/POS jobs to a receipt printer.
type Printer interface {
	// Print sends one job. Jobs never interleave on the device.
	Print(ctx context.Context, data []byte) error
	Close() error
	IsConnected() bool
}

// usbPrinter writes each job to a device file such as /dev/usb/lp0.
type usbPrinter struct {
	mu   sync.Mutex
	path string
}

func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// networkPrinter dials a raw TCP port (usually 9100) per job.
type networkPrinter struct {
	mu           sync.Mutex
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewNetworkPrinter expects host:port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address:      address,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dialer := net.Dialer{Timeout: p.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// nullPrinter discards jobs; used when no hardware is configured.
type nullPrinter struct{}

func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(ctx context.Context, _ []byte) error { return ctx.Err() }
func (nullPrinter) Close() error { return nil }
func (nullPrinter) IsConnected() bool { return false }

// NewPrinterFromConfig builds the printer named by printerType.
func NewPrinterFromConfig(printerType, usbPath, address string) (Printer, error) {
	switch strings.ToLower(strings.TrimSpace(printerType)) {
	case TypeUSB:
		if usbPath == "" {
			return nil, fmt.Errorf("printer: PRINTER_USB_PATH is required for usb printers")
		}
		return NewUSBPrinter(usbPath), nil
	case TypeNetwork:
		if _, _, err := net.SplitHostPort(address); err != nil {
			return nil, fmt.Errorf("printer: PRINTER_ADDRESS must be host:port: %w", err)
		}
		return NewNetworkPrinter(address), nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network or none)", printerType)
	}
}
