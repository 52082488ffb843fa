// Package orderparse decodes the compact order-item notation used by the
// counter clients: items separated by ";", fields by ":", addon entries by
// "," with "|" between addon id and quantity.
//
//	p1:2:sem cebola:a1|1,a2|2;p2::null
package orderparse

import (
	"strconv"
	"strings"
)

// AddonSelection is one addon picked for an item.
type AddonSelection struct {
	AddonID  string
	Quantity int
}

// Item is one decoded order line before product lookup.
type Item struct {
	ProductID string
	Quantity  int
	Notes     string
	Addons    []AddonSelection
}

// ParseItems decodes raw item notation. The format is forgiving: missing or
// unparsable quantities default to 1, the literal "null" (any case) and blank
// notes collapse to "", and addon entries without an id are dropped. It never
// fails; items with an empty product id are skipped.
func ParseItems(raw string) []Item {
	var items []Item
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		item, ok := parseItem(segment)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func parseItem(segment string) (Item, bool) {
	fields := strings.SplitN(segment, ":", 4)

	item := Item{
		ProductID: strings.TrimSpace(fields[0]),
		Quantity:  1,
	}
	if item.ProductID == "" {
		return Item{}, false
	}

	if len(fields) > 1 {
		if qty, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil && qty >= 1 {
			item.Quantity = qty
		}
	}
	if len(fields) > 2 {
		item.Notes = parseNotes(fields[2])
	}
	if len(fields) > 3 {
		item.Addons = parseAddons(fields[3])
	}
	return item, true
}

func parseNotes(field string) string {
	notes := strings.TrimSpace(field)
	if strings.EqualFold(notes, "null") {
		return ""
	}
	return notes
}

func parseAddons(field string) []AddonSelection {
	var addons []AddonSelection
	for _, entry := range strings.Split(field, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, qtyPart, _ := strings.Cut(entry, "|")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		qty := 1
		if n, err := strconv.Atoi(strings.TrimSpace(qtyPart)); err == nil && n >= 1 {
			qty = n
		}
		addons = append(addons, AddonSelection{AddonID: id, Quantity: qty})
	}
	return addons
}
