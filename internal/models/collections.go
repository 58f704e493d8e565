package models

// Top-level collections of the document store.
const (
	CollectionClients   = "clients"
	CollectionEvents    = "events"
	CollectionDishes    = "dishes"
	CollectionMenus     = "menus"
	CollectionMaterials = "materials"
	CollectionDrinks    = "drinks"
	CollectionConfig    = "config"
)

// Collections lists every collection, config last.
var Collections = []string{
	CollectionClients,
	CollectionEvents,
	CollectionDishes,
	CollectionMenus,
	CollectionMaterials,
	CollectionDrinks,
	CollectionConfig,
}

// IsCollection reports whether name is a known collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
