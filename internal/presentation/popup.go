package presentation

import "healthmap/internal/models"

// Popup is the content of a map popup, left for the client to lay out.
type Popup struct {
	Title  string       `json:"title"`
	Fields []PopupField `json:"fields"`
	Hint   string       `json:"hint,omitempty"`
}

// PopupField is a paragraph, optionally prefixed by a bold label.
type PopupField struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

func TerritoryPopup(t models.Territory) Popup {
	p := Popup{
		Title:  t.Name,
		Fields: []PopupField{{Text: t.Description}},
		Hint:   "Click to view health services in this area",
	}
	if t.Language != "" {
		p.Fields = append(p.Fields, PopupField{Label: "Language", Text: t.Language})
	}
	return p
}

func ServicePopup(s models.HealthService) Popup {
	p := Popup{
		Title: s.Name,
		Fields: []PopupField{
			{Label: "Type", Text: s.Category.Label()},
			{Text: s.Description},
			{Label: "Address", Text: s.Address},
		},
		Hint: "Click marker for more details",
	}
	if s.Phone != "" {
		p.Fields = append(p.Fields, PopupField{Label: "Phone", Text: s.Phone})
	}
	return p
}

func DronePopup(d models.DeliveryUnit) Popup {
	return Popup{
		Title: "Drone " + d.ID,
		Fields: []PopupField{
			{Label: "Status", Text: d.Status.String()},
			{Label: "From", Text: d.From},
			{Label: "To", Text: d.To},
			{Label: "ETA", Text: d.EstimatedArrival},
		},
		Hint: "Click marker for delivery details",
	}
}

func UserLocationPopup() Popup {
	return Popup{Title: "You are here"}
}
