package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SaveUploadedFile кладёт загруженный файл во временный каталог и возвращает
// путь. Имя генерируется заново, расширение берётся из оригинала.
func SaveUploadedFile(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("ошибка открытия загруженного файла: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fileHeader.Filename)
	dstPath := filepath.Join(os.TempDir(), uuid.New().String()+ext)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	return dstPath, nil
}
