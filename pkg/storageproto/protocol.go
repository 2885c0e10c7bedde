// Package storageproto описывает протокол HTTP-взаимодействия с узлами хранения чанков.
package storageproto

// Параметры REST-протокола взаимодействия со стораджами.
const (
	ChunkPathFormat  = "%s/chunks/%s/%d"
	FilePathFormat   = "%s/chunks/%s"
	HealthPathFormat = "%s/health"

	HeaderChecksum    = "X-Checksum-Sha256"
	HeaderTotalChunks = "X-Total-Chunks"
	HeaderChunkSize   = "X-Size"
)

// Health описывает тело ответа GET /health узла хранения.
type Health struct {
	OK         bool  `json:"ok"`
	TotalBytes int64 `json:"total_bytes"`
}
