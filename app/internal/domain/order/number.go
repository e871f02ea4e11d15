package order

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewNumber builds an order number like CT-482913-K7Q from the last six
// digits of the unix millisecond clock and three random characters.
func NewNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	var b strings.Builder
	b.WriteString("CT-")
	b.WriteString(ms)
	b.WriteByte('-')
	for i := 0; i < 3; i++ {
		b.WriteByte(numberAlphabet[rand.Intn(len(numberAlphabet))])
	}
	return b.String()
}
