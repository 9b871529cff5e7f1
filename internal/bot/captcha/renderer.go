package captcha

import (
	"fmt"
	"io"

	"github.com/mojocn/base64Captcha"
)

const (
	imageWidth  = 300
	imageHeight = 100
	imageNoise  = 20
)

// Renderer draws a code into a png image.
type Renderer interface {
	Render(code string, w io.Writer) error
}

type imageRenderer struct {
	driver *base64Captcha.DriverString
}

func NewImageRenderer() Renderer {
	return &imageRenderer{
		driver: base64Captcha.NewDriverString(
			imageHeight, imageWidth, imageNoise,
			base64Captcha.OptionShowHollowLine|base64Captcha.OptionShowSlimeLine,
			codeLength, codeAlphabet,
			nil, nil, nil,
		),
	}
}

func (r *imageRenderer) Render(code string, w io.Writer) error {
	item, err := r.driver.DrawCaptcha(code)
	if err != nil {
		return fmt.Errorf("draw captcha: %w", err)
	}

	if _, err := item.WriteTo(w); err != nil {
		return fmt.Errorf("write captcha image: %w", err)
	}
	return nil
}
