package models

// UploadResult возвращается после успешной загрузки.
type UploadResult struct {
	ID string `json:"id"`
}

// DefaultChunkSize совпадает с размером чанка GridFS по умолчанию (255 KiB).
const DefaultChunkSize int64 = 255 * 1024

// ChunkPlan описывает нарезку потока на чанки фиксированного размера.
type ChunkPlan struct {
	Size int64
}

// NewChunkPlan нормализует размер чанка; неположительные значения заменяются значением по умолчанию.
func NewChunkPlan(size int64) ChunkPlan {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return ChunkPlan{Size: size}
}

// Count возвращает число чанков для файла заданной длины.
func (p ChunkPlan) Count(length int64) int {
	if length <= 0 {
		return 0
	}
	return int((length + p.Size - 1) / p.Size)
}
