package models

import "time"

// Metadata: произвольные атрибуты, приложенные к файлу при загрузке. Сервис их не интерпретирует.
type Metadata map[string]any

// Clone возвращает поверхностную копию, чтобы не делиться картой с вызывающим кодом.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Chunk описывает один чанк файла в локальном движке хранения.
type Chunk struct {
	Index  int    `json:"index"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
}

// File: запись о сохранённом файле. После создания не изменяется.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"filename"`
	Length     int64     `json:"length"`
	ChunkSize  int64     `json:"chunk_size"`
	UploadDate time.Time `json:"upload_date"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	Chunks     []Chunk   `json:"chunks,omitempty"`
}

// Clone возвращает копию структуры, чтобы не делиться внутренними картами и слайсами.
func (f File) Clone() File {
	out := f
	out.Metadata = f.Metadata.Clone()
	if f.Chunks != nil {
		out.Chunks = append([]Chunk(nil), f.Chunks...)
	}
	return out
}

// Info возвращает упрощённое представление записи для внешнего API.
func (f File) Info() FileInfo {
	return FileInfo{
		ID:         f.ID,
		Filename:   f.Name,
		Length:     f.Length,
		UploadDate: f.UploadDate,
		Metadata:   f.Metadata.Clone(),
	}
}

// FileInfo: JSON-представление файла в ответах REST API.
type FileInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Length     int64     `json:"length"`
	UploadDate time.Time `json:"uploadDate"`
	Metadata   Metadata  `json:"metadata,omitempty"`
}

// Filter выбирает записи хранилища. Нулевое значение совпадает со всеми файлами.
type Filter struct {
	ID string
}

// All возвращает фильтр по всем файлам.
func All() Filter { return Filter{} }

// ByID возвращает фильтр по идентификатору файла.
func ByID(id string) Filter { return Filter{ID: id} }

// MatchesAll сообщает, что фильтр не ограничивает выборку.
func (f Filter) MatchesAll() bool { return f.ID == "" }
