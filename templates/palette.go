package templates

import "fmt"

// GraphicKeys returns the tile faces the client has art for: three suits of
// nine ranks, then flowers, dragons, seasons and winds.
func GraphicKeys() []string {
	keys := make([]string, 0, 42)
	for _, suit := range []string{"bamboo", "characters", "dots"} {
		for rank := 1; rank <= 9; rank++ {
			keys = append(keys, fmt.Sprintf("%s_%d", suit, rank))
		}
	}
	keys = append(keys,
		"flower_bamboo", "flower_chrysanthemum", "flower_orchid", "flower_plum",
		"dragon_green", "dragon_red", "dragon_white",
		"season_fall", "season_spring", "season_summer", "season_winter",
		"wind_east", "wind_north", "wind_south", "wind_west",
	)
	return keys
}
