package presentation

import (
	"healthmap/internal/catalog"
	"healthmap/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Base map settings for the client.
const (
	DefaultZoom     = 10
	LocatedZoom     = 13
	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// MapView is the initial viewport and base layer.
type MapView struct {
	Center          [2]float64    `json:"center"` // [lat, lng]
	Zoom            int           `json:"zoom"`
	Bounds          [2][2]float64 `json:"bounds"` // [[south, west], [north, east]]
	TileURL         string        `json:"tileUrl"`
	TileAttribution string        `json:"tileAttribution"`
	Legend          []LegendEntry `json:"legend"`
}

func InitialView(cat *catalog.Catalog) MapView {
	b := cat.Bounds()
	return MapView{
		Center:          [2]float64{catalog.DefaultCenter.Lat(), catalog.DefaultCenter.Lon()},
		Zoom:            DefaultZoom,
		Bounds:          [2][2]float64{{b.Min.Lat(), b.Min.Lon()}, {b.Max.Lat(), b.Max.Lon()}},
		TileURL:         TileURL,
		TileAttribution: TileAttribution,
		Legend:          Legend(),
	}
}

// Layers is everything the map draws for one session.
type Layers struct {
	Territories *geojson.FeatureCollection `json:"territories"`
	Services    *geojson.FeatureCollection `json:"services"`
	Drones      *geojson.FeatureCollection `json:"drones"`
	User        *geojson.Feature           `json:"user,omitempty"`
}

// RenderLayers renders the whole catalog against a selection and optional
// user position.
func RenderLayers(cat *catalog.Catalog, sel models.Selection, pos *models.ResolvedPosition) Layers {
	return Layers{
		Territories: TerritoryLayer(cat.Territories(), sel),
		Services:    ServiceLayer(cat.Services(), sel),
		Drones:      DroneLayer(cat.Drones(), sel),
		User:        UserLocationFeature(pos),
	}
}

func TerritoryLayer(territories []models.Territory, sel models.Selection) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range territories {
		f := geojson.NewFeature(t.Boundary)
		f.ID = t.ID
		f.Properties["id"] = t.ID
		f.Properties["kind"] = string(models.EntityTerritory)
		f.Properties["name"] = t.Name
		f.Properties["description"] = t.Description
		if t.Language != "" {
			f.Properties["language"] = t.Language
		}
		f.Properties["style"] = BoundaryStyle()
		f.Properties["popup"] = TerritoryPopup(t)
		f.Properties["selected"] = sel.LastTerritoryID == t.ID
		fc.Append(f)
	}
	return fc
}

func ServiceLayer(services []models.HealthService, sel models.Selection) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range services {
		f := geojson.NewFeature(s.Location)
		f.ID = s.ID
		f.Properties["id"] = s.ID
		f.Properties["kind"] = string(models.EntityService)
		f.Properties["name"] = s.Name
		f.Properties["type"] = s.Category.String()
		f.Properties["territoryId"] = s.TerritoryID
		f.Properties["style"] = ServiceMarkerStyle(s.Category)
		f.Properties["popup"] = ServicePopup(s)
		f.Properties["selected"] = sel.Kind == models.SelectionService && sel.ServiceID == s.ID
		fc.Append(f)
	}
	return fc
}

func DroneLayer(drones []models.DeliveryUnit, sel models.Selection) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, d := range drones {
		f := geojson.NewFeature(d.Position)
		f.ID = d.ID
		f.Properties["id"] = d.ID
		f.Properties["kind"] = string(models.EntityDrone)
		f.Properties["status"] = d.Status.String()
		f.Properties["style"] = DroneMarkerStyle(d.Status)
		f.Properties["popup"] = DronePopup(d)
		f.Properties["selected"] = sel.Kind == models.SelectionDrone && sel.DroneID == d.ID
		fc.Append(f)
	}
	return fc
}

// UserLocationFeature returns nil when no position has been resolved.
func UserLocationFeature(pos *models.ResolvedPosition) *geojson.Feature {
	if pos == nil {
		return nil
	}
	f := geojson.NewFeature(orb.Point{pos.Lon, pos.Lat})
	f.Properties["kind"] = "user"
	f.Properties["source"] = string(pos.Source)
	f.Properties["seq"] = pos.Seq
	if pos.AccuracyM > 0 {
		f.Properties["accuracy_m"] = pos.AccuracyM
	}
	f.Properties["popup"] = UserLocationPopup()
	f.Properties["zoom"] = LocatedZoom
	return f
}
