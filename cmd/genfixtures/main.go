// Command genfixtures generates deterministic raw and normalized JSON
// fixtures for the three upstream collections. It uses the actual domain
// package so the normalized output matches real service behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/fixtures
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hydroatlas/hydroatlas/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for JSON fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Fixed clock for reproducible NormalizedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	quality := qualityFixtures()
	rivers := riverFixtures()
	resources := resourceFixtures()

	var normalized []domain.WaterObject
	for _, raw := range quality {
		obj, err := domain.NormalizeQualityPoint(raw)
		if err != nil {
			log.Printf("skipping quality point: %v", err)
			continue
		}
		normalized = append(normalized, obj)
	}
	for _, raw := range rivers {
		obj, err := domain.NormalizeRiverLevel(raw)
		if err != nil {
			log.Printf("skipping river level: %v", err)
			continue
		}
		normalized = append(normalized, obj)
	}
	for _, raw := range resources {
		obj, err := domain.NormalizeResource(raw)
		if err != nil {
			log.Printf("skipping resource: %v", err)
			continue
		}
		normalized = append(normalized, obj)
	}
	normalized = domain.RescoreAll(normalized, domain.Now())
	domain.SortByPriority(normalized)

	files := map[string]any{
		"water_class.json":        quality,
		"river_level.json":        rivers,
		"objects.json":            resources,
		"normalized_objects.json": normalized,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(*out, name), v); err != nil {
			return err
		}
	}

	log.Printf("wrote %d fixtures, %d normalized objects", len(files), len(normalized))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func qualityFixtures() []domain.RawQualityPoint {
	return []domain.RawQualityPoint{
		{
			ID:           "1",
			Latitude:     floatPtr(51.18),
			Longitude:    floatPtr(71.44),
			Description:  "Река Ишим\nСтвор выше г. Астана",
			WaterClass:   2,
			LocationInfo: "Акмолинская область",
			Fauna:        "карась, окунь",
			ObservedAt:   "2023-01-15",
			Parameters: []domain.RawQualityParameter{
				{Parameter: "Железо общее", Unit: "мг/дм3", Concentration: 0.42, Background: 0.3},
				{Parameter: "Аммоний солевой", Unit: "мг/дм3", Concentration: 0.18, Background: 0.5},
			},
		},
		{
			ID:           "2",
			Latitude:     floatPtr(43.35),
			Longitude:    floatPtr(77.05),
			Description:  "Озеро Иссык",
			WaterClass:   1,
			LocationInfo: "Алматинская область",
			ObservedAt:   "2024-07-02",
		},
		// missing coordinates, skipped during normalization
		{
			ID:          "3",
			Description: "Точка без координат",
			WaterClass:  3,
		},
	}
}

func riverFixtures() []domain.RawRiverLevelPoint {
	return []domain.RawRiverLevelPoint{
		{
			ID:            "7",
			Name:          "Гидропост Семей",
			Region:        "Абайская область",
			ResourceType:  "река",
			WaterType:     "пресная",
			Latitude:      floatPtr(50.4),
			Longitude:     floatPtr(80.25),
			DangerLevelCm: floatPtr(500),
			ActualLevelCm: floatPtr(480),
			DischargeM3s:  floatPtr(310.5),
			TemperatureC:  floatPtr(14.2),
			ObservedAt:    "2025-05-30",
		},
		{
			ID:            "8",
			Name:          "Гидропост Атырау",
			Region:        "Атырауская область",
			ResourceType:  "река",
			WaterType:     "пресная",
			Latitude:      floatPtr(47.1),
			Longitude:     floatPtr(51.9),
			DangerLevelCm: floatPtr(430),
			ActualLevelCm: floatPtr(210),
			ObservedAt:    "2025-05-30",
		},
	}
}

func resourceFixtures() []domain.RawResourceObject {
	return []domain.RawResourceObject{
		{
			ID:                 "3",
			Name:               "Озеро Балхаш",
			Region:             "Карагандинская область",
			ResourceType:       "озеро",
			WaterType:          "непресная",
			Fauna:              true,
			PassportDate:       "2005-03-10",
			TechnicalCondition: intPtr(2),
			Latitude:           floatPtr(46.5),
			Longitude:          floatPtr(74.5),
		},
		{
			ID:                 "4",
			Name:               "Канал Иртыш-Караганда",
			Region:             "Карагандинская область",
			ResourceType:       "канал",
			WaterType:          "пресная",
			PassportDate:       "2018-09-01",
			TechnicalCondition: intPtr(4),
			Latitude:           floatPtr(49.9),
			Longitude:          floatPtr(72.9),
		},
	}
}
