package display

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRCode renders content as a block-character QR code for the terminal.
func QRCode(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
