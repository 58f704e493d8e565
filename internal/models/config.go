package models

// TransportCosts prices a delivery per kilometre; Upper applies beyond
// Threshold kilometres, Under otherwise.
type TransportCosts struct {
	Under     float64 `json:"under"`
	Upper     float64 `json:"upper"`
	Threshold float64 `json:"threshold"`
}

// Config is the singleton settings document shared by every price
// computation.
type Config struct {
	AppTitle         string         `json:"appTitle"`
	TransportCosts   TransportCosts `json:"transportCosts"`
	WagesServer      float64        `json:"wagesServer"`
	WagesCook        float64        `json:"wagesCook"`
	DefaultStatus    EventStatus    `json:"defaultStatus"`
	Addresses        []Place        `json:"addresses"`
	LabelsStatus     []Label        `json:"labelsStatus"`
	Labels           []Label        `json:"labels"`
	CategoriesSorted []string       `json:"categoriesSorted"`
}

// List returns the string list stored under key, used by the grouping
// descriptors. Only categoriesSorted is a list today.
func (c Config) List(key string) []string {
	switch key {
	case "categoriesSorted":
		return c.CategoriesSorted
	}
	return nil
}

// Address finds a configured departure location by id.
func (c Config) Address(id string) (Place, bool) {
	for _, a := range c.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Place{}, false
}

// Label finds a label (status or free) by id.
func (c Config) Label(id string) (Label, bool) {
	for _, l := range c.LabelsStatus {
		if l.ID == id {
			return l, true
		}
	}
	for _, l := range c.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// StatusLabel returns the label mirroring status.
func (c Config) StatusLabel(status EventStatus) (Label, bool) {
	for _, l := range c.LabelsStatus {
		if l.Status != nil && *l.Status == status {
			return l, true
		}
	}
	return Label{}, false
}

// DefaultConfig is written by the seeder when the store holds no config.
func DefaultConfig(title string) Config {
	offer, confirmed, cancelled := EventStatusOffer, EventStatusConfirmed, EventStatusCancelled
	return Config{
		AppTitle:       title,
		TransportCosts: TransportCosts{Under: 1.5, Upper: 1, Threshold: 50},
		WagesServer:    35,
		WagesCook:      40,
		DefaultStatus:  EventStatusOffer,
		LabelsStatus: []Label{
			{Name: "Offer", Color: "#f0ad4e", Status: &offer},
			{Name: "Confirmed", Color: "#5cb85c", Status: &confirmed},
			{Name: "Cancelled", Color: "#d9534f", Status: &cancelled},
		},
		CategoriesSorted: []string{"Entrée", "Plat", "Dessert"},
	}
}
