package services

import (
	"context"
	"fmt"
	"strings"

	"biomed-inventory/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportResult - итог импорта инвентарной ведомости.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// EquipmentImportService грузит оборудование из Excel-ведомости больницы.
// Ведомости приходят в разном виде, поэтому шапка ищется по содержимому,
// а не по фиксированной строке.
type EquipmentImportService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEquipmentImportService(db *pgxpool.Pool, logger *zap.Logger) *EquipmentImportService {
	return &EquipmentImportService{db: db, logger: logger}
}

func (s *EquipmentImportService) ImportFromFile(ctx context.Context, filePath string) (*ImportResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	var finalRows [][]string
	codeIdx, serialIdx, nameIdx, brandIdx, modelIdx := -1, -1, -1, -1, -1
	headerFoundRow := -1

	for _, sheet := range f.GetSheetList() {
		rows, _ := f.GetRows(sheet)
		for rIdx, row := range rows {
			rowStr := strings.ToLower(strings.Join(row, "|"))

			hasCode := strings.Contains(rowStr, "инвент") || strings.Contains(rowStr, "код")
			hasName := strings.Contains(rowStr, "наимен") || strings.Contains(rowStr, "оборудован")
			if !hasCode || !hasName {
				continue
			}

			for cIdx, colName := range row {
				cLower := strings.ToLower(strings.TrimSpace(colName))
				switch {
				case strings.Contains(cLower, "инвент") || strings.Contains(cLower, "код"):
					codeIdx = cIdx
				case strings.Contains(cLower, "серийн") || strings.Contains(cLower, "s/n"):
					serialIdx = cIdx
				case strings.Contains(cLower, "наимен") || strings.Contains(cLower, "оборудован"):
					nameIdx = cIdx
				case strings.Contains(cLower, "производ") || strings.Contains(cLower, "бренд") || strings.Contains(cLower, "марка"):
					brandIdx = cIdx
				case strings.Contains(cLower, "модел"):
					modelIdx = cIdx
				}
			}

			if codeIdx != -1 && nameIdx != -1 {
				finalRows = rows
				headerFoundRow = rIdx
				s.logger.Info("шапка ведомости найдена",
					zap.String("sheet", sheet), zap.Int("row", rIdx+1))
				break
			}
		}
		if headerFoundRow != -1 {
			break
		}
	}

	if headerFoundRow == -1 {
		return nil, fmt.Errorf("не найдена шапка ведомости: нужны колонки с инвентарным кодом и наименованием")
	}

	result := &ImportResult{}
	for i := headerFoundRow + 1; i < len(finalRows); i++ {
		row := finalRows[i]

		code := strings.ToUpper(safeCell(row, codeIdx))
		name := safeCell(row, nameIdx)
		if code == "" || name == "" || isSummaryRow(name) {
			result.Skipped++
			continue
		}

		query := `
			INSERT INTO equipments (inventory_code, serial_number, name, brand, model, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			ON CONFLICT (inventory_code)
			DO UPDATE SET
				serial_number = COALESCE(NULLIF(EXCLUDED.serial_number, ''), equipments.serial_number),
				name = EXCLUDED.name,
				brand = COALESCE(NULLIF(EXCLUDED.brand, ''), equipments.brand),
				model = COALESCE(NULLIF(EXCLUDED.model, ''), equipments.model),
				updated_at = NOW()
			RETURNING (xmax = 0) AS is_insert`

		var isInsert bool
		err := s.db.QueryRow(ctx, query,
			code, safeCell(row, serialIdx), name, safeCell(row, brandIdx), safeCell(row, modelIdx),
			entities.EquipmentStatusAvailable,
		).Scan(&isInsert)
		if err != nil {
			s.logger.Warn("строка ведомости не импортирована",
				zap.Int("row", i+1), zap.String("inventoryCode", code), zap.Error(err))
			result.Errors++
			continue
		}

		if isInsert {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("импорт ведомости завершён",
		zap.String("file", filePath),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors))
	return result, nil
}

func safeCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isSummaryRow(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return strings.Contains(v, "итого") || strings.Contains(v, "всего")
}
