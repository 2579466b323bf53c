package catalog

// Word sets are normalized (see textnorm.Normalize) and cover both locales.

// TreeWords are the nouns that mean "tree".
var TreeWords = wordSet(
	"tree", "trees",
	"arbol", "arboles", "frutal", "frutales", "arbolito", "arbolitos",
)

// PlantWords are the generic nouns that mean "plant".
var PlantWords = wordSet(
	"plant", "plants", "seedling", "seedlings", "sprout", "sprouts",
	"planta", "plantas", "mata", "matas", "plantula", "plantulas", "plantita", "plantitas",
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
