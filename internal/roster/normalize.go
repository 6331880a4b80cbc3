// Package roster - match consultant từ sheet ca trực theo ngày giờ đặt lịch.
//
// Chuỗi ngày giờ đến từ nhiều nguồn (form bên ngoài, script trên spreadsheet,
// nhập tay) nên cùng một thời điểm có thể viết khác nhau: chữ số full-width,
// dấu sóng 〜/～, khoảng trắng full-width, 年月日 thay vì dấu "/". Module này
// đưa tất cả về một dạng chuẩn trước khi so sánh - một ký tự bỏ sót ở đây là
// một lần match thất bại âm thầm, không có lỗi nào báo ra.
package roster

import (
	"regexp"
	"strings"
)

// waveDashes - mọi biến thể wave-dash/tilde đều về một dấu gạch ngang
var waveDashes = map[rune]bool{
	'〜': true, // U+301C wave dash
	'～': true, // U+FF5E fullwidth tilde
	'~': true,
	'∼': true, // U+223C tilde operator
	'〰': true, // U+3030 wavy dash
	'－': true, // U+FF0D fullwidth hyphen-minus
	'–': true,
	'—': true,
}

// leadingZero bắt thành phần số có số 0 đứng đầu ngay sau đầu chuỗi,
// "/", ":" hoặc khoảng trắng
var leadingZero = regexp.MustCompile(`(^|[/: ])0+([0-9])`)

// foldRune đưa một rune về dạng chuẩn; trả về -1 nếu rune bị loại bỏ
func foldRune(r rune) rune {
	switch {
	case r >= '０' && r <= '９': // Chữ số full-width → half-width
		return r - '０' + '0'
	case r == '（':
		return '('
	case r == '）':
		return ')'
	case r == '：':
		return ':'
	case waveDashes[r]:
		return '-'
	case r == '\t' || r == '\n' || r == '\r' || r == '　': // Khoảng trắng các loại → space thường
		return ' '
	}
	return r
}

// datePrefix bắt phần ngày dạng slash ở đầu chuỗi đã chuẩn hóa
var datePrefix = regexp.MustCompile(`^\d{1,4}/\d{1,2}/\d{1,2}`)

// NormalizeDateTime chuẩn hóa chuỗi ngày giờ để so sánh.
// "２０２６年１月３１日" và "2026/1/31" cùng về "2026/1/31".
func NormalizeDateTime(s string) string {
	return strings.ReplaceAll(normalizeKeepSpace(s), " ", "")
}

// NormalizeDate trả về riêng phần ngày (đã chuẩn hóa) của một chuỗi ngày giờ.
// Dùng khi so theo ngày mà giá trị có thể kèm giờ: "2026/01/31 10:00" và
// "2026/1/31" cùng về "2026/1/31".
func NormalizeDate(s string) string {
	folded := normalizeKeepSpace(s)

	// Phần ngày kết thúc tại khoảng trắng đầu tiên (ranh giới ngày/giờ)
	if i := strings.IndexByte(folded, ' '); i >= 0 {
		folded = folded[:i]
	}
	if m := datePrefix.FindString(folded); m != "" {
		return m
	}
	return folded
}

// normalizeKeepSpace chuẩn hóa nhưng giữ khoảng trắng làm ranh giới thành phần
func normalizeKeepSpace(s string) string {
	s = strings.Map(foldRune, s)

	// Dạng 年月日 → dạng slash
	s = strings.ReplaceAll(s, "年", "/")
	s = strings.ReplaceAll(s, "月", "/")
	s = strings.ReplaceAll(s, "日", "")

	// Bỏ số 0 đứng đầu từng thành phần để "2026/01/31" == "2026/1/31".
	// Chạy lặp vì hai thành phần liền kề chia sẻ ký tự phân cách.
	for {
		folded := leadingZero.ReplaceAllString(s, "${1}${2}")
		if folded == s {
			break
		}
		s = folded
	}

	return strings.TrimSpace(s)
}

// NormalizeName chuẩn hóa tên người để so sánh (bỏ mọi khoảng trắng)
func NormalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '　' {
			return -1
		}
		return r
	}, s)
}
