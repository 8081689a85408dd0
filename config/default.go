package config

import "time"

// Default returns the stock feature set for Minecraft Bedrock's
// libminecraftpe.so.
func Default() *Config {
	pairs := defaultPairs()

	return &Config{
		Target: Target{
			Process: "com.mojang.minecraftpe",
			Module:  "libminecraftpe.so",
		},
		Features: []Feature{
			{
				Name:           "fly",
				Offsets:        [][]Offset{{0xDFB8A38, 0x88, 0x88, 0xA50, 0x48, 0x0, 0x1AC}},
				Interval:       Duration(50 * time.Millisecond),
				Enabled:        1,
				Disabled:       0,
				PersistAddress: true,
			},
			{
				Name:           "through_walls",
				Offsets:        [][]Offset{{0xDFB8A38, 0x88, 0x88, 0xA50, 0x48, 0x0, 0x20C}},
				Interval:       Duration(time.Second),
				Enabled:        1,
				Disabled:       0,
				PersistAddress: true,
			},
			{
				Name:     "collision_box",
				Offsets:  [][]Offset{{0xDFB8A38, 0xD8, 0x208, 0x0, 0x2F8, 0x0}},
				Interval: Duration(100 * time.Millisecond),
				Enabled:  5,
				Disabled: 0.6,
				Type:     "float32",
				Pairs:    &pairs,
			},
			{
				Name:           "creative_mode",
				Offsets:        [][]Offset{{0xDFB8A38, 0x628, 0x38, 0xA90, 0xB8, 0x200}},
				Interval:       Duration(time.Second),
				Enabled:        1,
				Disabled:       5,
				PersistAddress: true,
			},
		},
	}
}
