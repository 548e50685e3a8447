package util

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// FormatLabel 用于错误提示，例如 "JSON"
func FormatLabel(format string) string {
	return strings.ToUpper(format)
}

// MatchesFormat 判断上传文件是否为期望格式：扩展名或声明的 Content-Type 任一匹配即可
func MatchesFormat(filename, contentType, format string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == format {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.Contains(mediaType, format)
}

// IsTextContent 嗅探文件头，拒绝二进制内容
func IsTextContent(head []byte) bool {
	if len(head) > 512 {
		head = head[:512]
	}
	detected := http.DetectContentType(head)
	return strings.HasPrefix(detected, "text/") || strings.HasPrefix(detected, MimeJSON)
}

// ContentTypeFor 上传到后端时使用的 Content-Type
func ContentTypeFor(format string) string {
	if format == UploadFormatCSV {
		return MimeCSV
	}
	return MimeJSON
}
