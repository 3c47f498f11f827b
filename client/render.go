package main

import (
	"github.com/phambaophuc/ecovision/internal/models"
)

func renderResult(r models.IdentificationResult) string {
	return renderTable(
		[]string{"Campo", "Valor"},
		[][]string{
			{"Nombre común", r.CommonName},
			{"Nombre científico", r.ScientificName},
			{"Hábitat", r.Habitat},
			{"Estado de conservación", r.ConservationStatus},
		},
	)
}

func renderHealth(h models.HealthCheck, names []string) string {
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, h.Services[name]})
	}
	return renderTable([]string{"Service", "Status"}, rows)
}
