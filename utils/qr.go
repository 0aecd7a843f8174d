package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRDataURL encodes url as a PNG QR code and returns it as a data URL the
// dashboard can drop straight into an <img> tag.
func QRDataURL(url string, size int) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("error encoding QR code: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
