package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"learnhub_backend/internal/util"
)

const serialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCertificateNumber renders CERT-<year>-<6 random alnum>-<base36 millis>.
func NewCertificateNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString(util.CertificatePrefix)
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(now.Year()))
	b.WriteByte('-')
	b.WriteString(randomAlnum(6))
	b.WriteByte('-')
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	return b.String()
}

func randomAlnum(n int) string {
	max := big.NewInt(int64(len(serialAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = serialAlphabet[idx.Int64()]
	}
	return string(out)
}
