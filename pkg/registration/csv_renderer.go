package registration

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

// RenderRoster writes the registrations of one event as a spreadsheet friendly table followed
// by the participant totals.
func (t *CsvRendererImpl) RenderRoster(eventDate string, registrations []Registration) (string, error) {
	data := make([][]string, 0, len(registrations)+5)
	data = append(data, []string{"Brunch", eventDate, ""})
	data = append(data, []string{"Name", "Mitbringsel", "Nur zum Kaffee"})

	coffeeOnly := 0
	for _, registration := range registrations {
		if registration.CoffeeOnly {
			coffeeOnly++
		}
		data = append(data, []string{registration.Name, registration.Item, yesNo(registration.CoffeeOnly)})
	}

	data = append(data,
		[]string{"Teilnehmer", strconv.Itoa(len(registrations)), ""},
		[]string{"Nur zum Kaffee", strconv.Itoa(coffeeOnly), ""},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "Ja"
	}
	return "Nein"
}
