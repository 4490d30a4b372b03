package seed

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/repository"
)

const dateLayout = "2006-01-02"

// SeedRealData imports the shelter's animal roster from a CSV export of
// the old intake spreadsheet. Expected columns:
// name,species,breed,sex,birth_date,intake_date,description
func SeedRealData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/animals.csv")
	if err != nil {
		slog.Error("failed to open the animal roster", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		slog.Error("failed to read the roster header", "error", err)
		return
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[header] = i
	}

	for _, required := range []string{"name", "species", "sex", "birth_date", "intake_date"} {
		if _, ok := columns[required]; !ok {
			slog.Error("the roster is missing a column", "column", required)
			return
		}
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	inserted := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("failed to read a roster row", "error", err)
			return
		}

		birthDate, err := time.Parse(dateLayout, field(row, "birth_date"))
		if err != nil {
			slog.Error("invalid birth date", "row", row, "error", err)
			continue
		}
		intakeDate, err := time.Parse(dateLayout, field(row, "intake_date"))
		if err != nil {
			slog.Error("invalid intake date", "row", row, "error", err)
			continue
		}

		animal := &domain.Animal{
			Name:        field(row, "name"),
			Species:     field(row, "species"),
			Breed:       field(row, "breed"),
			Sex:         field(row, "sex"),
			BirthDate:   birthDate,
			IntakeDate:  intakeDate,
			Description: field(row, "description"),
		}

		if err := r.CreateAnimal(animal); err != nil {
			slog.Error("failed to insert an animal", "name", animal.Name, "error", err)
			continue
		}

		inserted++
	}

	slog.Info("roster import finished", "inserted", inserted)
}
