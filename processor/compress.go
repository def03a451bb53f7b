package processor

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang/snappy"
)

// SnappyEncoding - значение Content-Encoding для тел отчётов, сжатых snappy
const SnappyEncoding = "x-snappy"

// CompressReport сжимает тело ответа отчёта
func CompressReport(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// DecompressReport распаковывает тело ответа отчёта
func DecompressReport(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки snappy: %w", err)
	}
	return decompressed, nil
}

// AcceptsSnappy сообщает, что клиент готов принять ответ, сжатый snappy
func AcceptsSnappy(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.EqualFold(strings.TrimSpace(part), SnappyEncoding) {
			return true
		}
	}
	return false
}

// DecodeBody возвращает тело ответа, распакованное согласно Content-Encoding
func DecodeBody(header http.Header, body []byte) ([]byte, error) {
	if strings.EqualFold(header.Get("Content-Encoding"), SnappyEncoding) {
		return DecompressReport(body)
	}
	return body, nil
}
