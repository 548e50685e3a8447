package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

const (
	UploadFormatJSON = "json"
	UploadFormatCSV  = "csv"
)

const (
	MimeJSON = "application/json"
	MimeCSV  = "text/csv"
)

// GradesFileSuffix 导出文件名为 ${assignmentName}-grades.json
const GradesFileSuffix = "-grades.json"
