// Package qrimg renders QR payloads as inline PNG data URLs, the form
// the admin console embeds directly into <img> tags.
package qrimg

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

func DataURL(payload []byte) (string, error) {
	png, err := qrcode.Encode(string(payload), qrcode.Medium, defaultSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
