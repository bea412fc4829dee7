// Package marketplace maps listing URLs to known retailer names.
package marketplace

import (
	"strings"

	"pricescout/pkg/models"
)

const (
	Amazon          = "Amazon"
	Flipkart        = "Flipkart"
	Croma           = "Croma"
	RelianceDigital = "Reliance Digital"
	JioMart         = "JioMart"
	TataCliq        = "Tata Cliq"
)

type entry struct {
	fragment string
	name     string
}

// Order matters: the first matching fragment wins.
var table = []entry{
	{"amazon.in", Amazon},
	{"flipkart.com", Flipkart},
	{"croma.com", Croma},
	{"reliancedigital", RelianceDigital},
	{"jiomart", JioMart},
	{"tatacliq", TataCliq},
}

// Identify returns the marketplace name for rawURL, or false if none matches.
func Identify(rawURL string) (string, bool) {
	u := strings.ToLower(rawURL)
	for _, e := range table {
		if strings.Contains(u, e.fragment) {
			return e.name, true
		}
	}
	return "", false
}

// Resolve is Identify with unknown URLs mapped to models.OnlineStore.
func Resolve(rawURL string) string {
	if name, ok := Identify(rawURL); ok {
		return name
	}
	return models.OnlineStore
}

// Names lists every known marketplace in table order.
func Names() []string {
	names := make([]string, 0, len(table))
	for _, e := range table {
		names = append(names, e.name)
	}
	return names
}
