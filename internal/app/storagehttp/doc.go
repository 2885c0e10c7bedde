// Package storagehttp реализует Storage API, HTTP-интерфейс узла, принимающего и
// выдающего чанки файлов поверх локального диска. Основные эндпоинты:
//   - PUT /chunks/{fileID}/{idx}: принимает чанк, проверяет размер/хеш и сохраняет вместе с meta.json.
//   - GET /chunks/{fileID}/{idx}: отдаёт сохранённый чанк как application/octet-stream.
//   - HEAD /chunks/{fileID}/{idx}: возвращает размер и SHA-256 через служебные заголовки.
//   - POST /chunks/{fileID}: запечатывает файл (X-Total-Chunks), после чего GC его не трогает.
//   - DELETE /chunks/{fileID}: удаляет все чанки файла.
//   - POST /admin/gc: инициирует сбор незапечатанных загрузок (ручной GC).
//   - GET /health: отдаёт агрегированные метрики по каталогу данных для health-check'ов.
package storagehttp
