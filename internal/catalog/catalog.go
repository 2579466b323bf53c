// Package catalog holds the fixed vocabulary of activity tags and the word
// lists used to reason about trees and plants.
package catalog

import (
	"slices"

	"github.com/pbaille/gardenlog/internal/domain"
)

// TreeTagID is the generic "tree" tag.
const TreeTagID = "arbol"

var definitions = []domain.TagDefinition{
	{ID: "siembra", English: "Planting", Spanish: "Siembra", Keywords: []string{"siembra", "sembr", "plantar", "plante", "planto", "plantado", "seed", "sow", "sowing"}},
	{ID: "cosecha", English: "Harvest", Spanish: "Cosecha", Keywords: []string{"cosecha", "cosechar", "recolect", "harvest", "collect"}},
	{ID: "poda", English: "Pruning", Spanish: "Poda", Keywords: []string{"poda", "podar", "pode", "prune", "pruning"}},
	{ID: "riego", English: "Irrigation", Spanish: "Riego", Keywords: []string{"riego", "regar", "agua", "irrigation", "water", "watering"}},
	{ID: "abono", English: "Fertilizer", Spanish: "Abono", Keywords: []string{"abono", "abonar", "fertiliz", "compost", "fertilizer", "manure"}},
	{ID: "trasplante", English: "Transplant", Spanish: "Trasplante", Keywords: []string{"trasplante", "trasplant", "transplant"}},
	{ID: "plagas", English: "Pest Control", Spanish: "Plagas", Keywords: []string{"plaga", "plagas", "insecto", "insectos", "hormiga", "hormigas", "pest", "insect", "aphid", "ant"}},
	{ID: "maleza", English: "Weeding", Spanish: "Maleza", Keywords: []string{"maleza", "malezas", "hierba", "hierbas", "deshierbe", "weed", "weeding"}},
	{ID: "suelo", English: "Soil", Spanish: "Suelo", Keywords: []string{"suelo", "tierra", "terreno", "soil", "ground"}},
	{ID: "semillas", English: "Seeds", Spanish: "Semillas", Keywords: []string{"semilla", "semillas", "seed", "seeds"}},
	{ID: "injerto", English: "Grafting", Spanish: "Injerto", Keywords: []string{"injerto", "injert", "graft", "grafting"}},
	{ID: "limpieza", English: "Cleaning", Spanish: "Limpieza", Keywords: []string{"limpieza", "limpiar", "cleanup", "cleaning"}},
	{ID: "arbol", English: "Tree", Spanish: "Arbol", Keywords: []string{"arbol", "tree"}},
	{ID: "frutal", English: "Fruit Tree", Spanish: "Frutal", Keywords: []string{"frutal", "fruit tree", "orchard"}},
	{ID: "limon", English: "Lemon", Spanish: "Limon", Keywords: []string{"limon", "lemon", "citron"}},
	{ID: "naranja", English: "Orange", Spanish: "Naranja", Keywords: []string{"naranja", "orange"}},
	{ID: "manzana", English: "Apple", Spanish: "Manzana", Keywords: []string{"manzana", "apple"}},
	{ID: "aguacate", English: "Avocado", Spanish: "Aguacate", Keywords: []string{"aguacate", "avocado", "palta"}},
	{ID: "cedro", English: "Cedar", Spanish: "Cedro", Keywords: []string{"cedro", "cedar"}},
	{ID: "papa", English: "Potato", Spanish: "Papa", Keywords: []string{"papa", "patata", "potato"}},
	{ID: "zanahoria", English: "Carrot", Spanish: "Zanahoria", Keywords: []string{"zanahoria", "carrot"}},
	{ID: "cebolla", English: "Onion", Spanish: "Cebolla", Keywords: []string{"cebolla", "onion"}},
	{ID: "ajo", English: "Garlic", Spanish: "Ajo", Keywords: []string{"ajo", "garlic"}},
	{ID: "lechuga", English: "Lettuce", Spanish: "Lechuga", Keywords: []string{"lechuga", "lettuce"}},
	{ID: "espinaca", English: "Spinach", Spanish: "Espinaca", Keywords: []string{"espinaca", "spinach"}},
	{ID: "culantro", English: "Cilantro", Spanish: "Culantro", Keywords: []string{"culantro", "cilantro", "coriander"}},
	{ID: "maiz", English: "Corn", Spanish: "Maiz", Keywords: []string{"maiz", "corn"}},
	{ID: "frijol", English: "Beans", Spanish: "Frijol", Keywords: []string{"frijol", "frijoles", "bean", "beans"}},
	{ID: "estanque", English: "Pond", Spanish: "Estanque", Keywords: []string{"estanque", "pond"}},
	{ID: "raiz", English: "Root", Spanish: "Raiz", Keywords: []string{"raiz", "root", "tuberculo", "tubercle", "bulbo", "bulb"}},
}

// treeSpecies is a static property of the ids listed here.
var treeSpecies = map[string]bool{
	"limon":    true,
	"naranja":  true,
	"manzana":  true,
	"aguacate": true,
	"cedro":    true,
}

var byID = func() map[string]int {
	m := make(map[string]int, len(definitions))
	for i, d := range definitions {
		m[d.ID] = i
	}
	return m
}()

// Definitions returns the catalog in definition order.
func Definitions() []domain.TagDefinition {
	out := make([]domain.TagDefinition, len(definitions))
	for i, d := range definitions {
		d.Keywords = slices.Clone(d.Keywords)
		out[i] = d
	}
	return out
}

// IDs returns every tag id in definition order.
func IDs() []string {
	ids := make([]string, len(definitions))
	for i, d := range definitions {
		ids[i] = d.ID
	}
	return ids
}

// Lookup returns the definition with the given id.
func Lookup(id string) (domain.TagDefinition, bool) {
	i, ok := byID[id]
	if !ok {
		return domain.TagDefinition{}, false
	}
	return definitions[i], true
}

// Name returns the localized display name of a catalog tag.
func Name(id string, lang domain.Language) (string, bool) {
	d, ok := Lookup(id)
	if !ok {
		return "", false
	}
	return d.Name(lang), true
}

// IsTreeSpecies reports whether id names a specific kind of tree.
func IsTreeSpecies(id string) bool {
	return treeSpecies[id]
}

// TreeSpeciesIDs returns the tree-species ids in definition order.
func TreeSpeciesIDs() []string {
	var ids []string
	for _, d := range definitions {
		if treeSpecies[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
