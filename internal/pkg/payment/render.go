// Package payment renders scannable payment request artifacts. Rendering is
// a pure function of the payment parameters: no state is kept and identical
// inputs always encode the same payment request.
package payment

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"coupon-shop-bot/internal/pkg/errs"
)

var ErrInvalidParams = errs.New("invalid payment parameters")

type Request struct {
	PayeeID   string
	PayeeName string
	Amount    int64
	Currency  string
}

// URI encodes the request as a UPI deep link, the format scanned by
// payment apps on the buyer side.
func (r Request) URI() string {
	q := url.Values{}
	q.Set("pa", r.PayeeID)
	q.Set("pn", r.PayeeName)
	q.Set("am", fmt.Sprintf("%d", r.Amount))
	q.Set("cu", r.Currency)
	return "upi://pay?" + q.Encode()
}

type Renderer interface {
	Render(req Request) ([]byte, error)
}

type QRRenderer struct {
	size int
}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{size: 256}
}

func (r *QRRenderer) Render(req Request) ([]byte, error) {
	if req.PayeeID == "" || req.PayeeName == "" || req.Currency == "" || req.Amount <= 0 {
		return nil, ErrInvalidParams
	}
	png, err := qrcode.Encode(req.URI(), qrcode.Medium, r.size)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode payment QR")
	}
	return png, nil
}
