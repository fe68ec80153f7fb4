package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(trackingNumber string) ([]byte, error)
}

// DefaultQRGenerator encodes the public tracking page of an order.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) TrackingURL(trackingNumber string) string {
	return fmt.Sprintf("%s/track/%s", strings.TrimRight(g.BaseURL, "/"), trackingNumber)
}

func (g DefaultQRGenerator) Generate(trackingNumber string) ([]byte, error) {
	return qrcode.Encode(g.TrackingURL(trackingNumber), qrcode.Medium, 256)
}
