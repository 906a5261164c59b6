package level

import "math"

func obj(typ string, size float64, model string, scale float64, color string, round bool, sound string) Template {
	return Template{
		Type:  typ,
		Size:  size,
		Model: model,
		Scale: scale,
		Color: color,
		Round: round,
		Sound: sound,
	}
}

// Builtin returns a fresh copy of the shipped level table.
func Builtin() []Level {
	levels := []Level{
		{
			ID:            "level1",
			Name:          "Sweet Home",
			Description:   "Start your cleaning adventure in a cozy Japanese-style room!",
			MaxTime:       300,
			RequiredScore: 300,
			RoomSize:      50,
			Templates: []Template{
				// 0-2cm
				obj("paperclip", 0.5, "models/none.glb", 1, "#A1A1A1", false, "music/blips/01.mp3"),
				obj("paperclip", 1, "models/paperclip.glb", 1, "#F48FB1", true, "music/blips/02.mp3"),
				obj("coin1", 2, "models/coin.glb", 0.3, "#FFD700", true, "music/blips/03.mp3"),
				// 2-5cm
				obj("coin2", 2, "models/coin.glb", 0.5, "#4CAF50", true, "music/blips/04.mp3"),
				obj("eraser", 3, "models/eraser.glb", 0.2, "#9E9E9E", false, "music/blips/05.mp3"),
				obj("cookie", 4, "models/cookie.glb", 0.7, "#2196F3", true, "music/blips/06.mp3"),
				// 5-10cm
				obj("book", 5, "models/books.glb", 0.25, "#795548", false, "music/blips/08.mp3"),
				obj("duck", 7, "models/duck.glb", 0.5, "#FF5722", false, "music/blips/07.mp3"),
				obj("car", 8.5, "models/toy_car.glb", 0.5, "#E0E0E0", false, "music/blips/09.mp3"),
				// 10-20cm
				obj("pot", 12, "models/flowerpot.glb", 0.3, "#9C27B0", false, "music/blips/10.mp3"),
				obj("chair", 13, "models/chair.glb", 0.06, "#8D6E63", false, "music/blips/01.mp3"),
				obj("trashcan", 14, "models/trashcan.glb", 1.1, "#795548", false, "music/blips/02.mp3"),
				// 20cm+
				obj("sofa", 20, "models/sofa.glb", 0.1, "#5D4037", false, "music/blips/03.mp3"),
				obj("desk", 25, "models/piano.glb", 0.1, "#3E2723", false, "music/blips/04.mp3"),
			},
			Tiers: []Tier{
				{Min: 0, Max: 2, GrowthRate: 0.5, RequiredCount: 10},
				{Min: 2, Max: 5, GrowthRate: 0.7, RequiredCount: 10},
				{Min: 5, Max: 10, GrowthRate: 1, RequiredCount: 10},
				{Min: 10, Max: 20, GrowthRate: 2, RequiredCount: 10},
				{Min: 20, Max: math.Inf(1), GrowthRate: 3, RequiredCount: 1},
			},
			Music:           []string{"music/katamini_01.mp3", "music/katamini_02.mp3"},
			MultiplayerRoom: "sweet-home",
			WallTexture:     "textures/wall_shoji.png",
			FloorTexture:    "textures/floor_carpet.jpg",
		},
		{
			ID:            "level2",
			Name:          "Office Space",
			Description:   "Take on the challenge of cleaning a busy office!",
			MaxTime:       240,
			RequiredScore: 150,
			Templates: []Template{
				obj("pencil", 0.3, "models/pencil.glb", 1, "#FFD700", false, "music/blips/01.mp3"),
			},
			Tiers: []Tier{
				{Min: 0, Max: 3, GrowthRate: 0.6, RequiredCount: 12},
				{Min: 3, Max: 7, GrowthRate: 0.8, RequiredCount: 12},
				{Min: 7, Max: 15, GrowthRate: 1.2, RequiredCount: 8},
				{Min: 15, Max: 25, GrowthRate: 2.5, RequiredCount: 5},
			},
			Music:        []string{"music/katamini_03.mp3", "music/katamini_04.mp3"},
			WallTexture:  "textures/wall_shoji.png",
			FloorTexture: "textures/floor_parquet.jpg",
		},
		{
			ID:            "level3",
			Name:          "Gold Rush",
			Description:   "Clean up after an outdoor garden party!",
			MaxTime:       10,
			RequiredScore: 200,
			RoomSize:      10,
			Templates: []Template{
				obj("coin", 0.5, "models/coin.glb", 0.1, "#87CEEB", false, "music/blips/01.mp3"),
				obj("coin", 1, "models/coin.glb", 0.2, "#87CEEB", false, "music/blips/01.mp3"),
				obj("coin", 2, "models/coin.glb", 0.3, "#87CEEB", false, "music/blips/01.mp3"),
				obj("coin", 4, "models/coin.glb", 0.4, "#87CEEB", false, "music/blips/01.mp3"),
			},
			Tiers: []Tier{
				{Min: 0, Max: 4, GrowthRate: 0.7, RequiredCount: 15},
				{Min: 4, Max: 9, GrowthRate: 1.0, RequiredCount: 12},
				{Min: 9, Max: 20, GrowthRate: 1.5, RequiredCount: 8},
				{Min: 20, Max: 35, GrowthRate: 3.0, RequiredCount: 3},
			},
			Music:           []string{"music/katamini_01.mp3", "music/katamini_04.mp3"},
			MultiplayerRoom: "gold-rush",
			AmbientColor:    "#88CCFF",
			WallTexture:     "textures/wall_stars.png",
			FloorTexture:    "textures/floor_carpet.jpg",
		},
	}
	for i := range levels {
		levels[i].Normalize()
	}
	return levels
}
