package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"MarketPulse/internal/model"
)

// holdingsFile is the JSON import/export document.
type holdingsFile struct {
	Holdings   []model.Holding `json:"holdings"`
	ExportedAt time.Time       `json:"exported_at"`
}

// LoadHoldings reads holdings from a JSON file. Returns no holdings if the file doesn't exist.
func LoadHoldings(filePath string) ([]model.Holding, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc holdingsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return doc.Holdings, nil
}

// SaveHoldings writes holdings to a JSON file.
func SaveHoldings(filePath string, holdings []model.Holding) error {
	doc := holdingsFile{Holdings: holdings, ExportedAt: time.Now()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
