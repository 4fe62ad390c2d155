package config

// Defaults returns the stock configuration: ECC H, scale 10, quiet zone 4,
// black on white, a 20% logo drawn straight over the modules (the rounded
// clear zone is opt-in) and the blue "Scan mich" badge with a 12px frame.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 8,
		},
		QR: QRConfig{
			ECC:       "H",
			Scale:     10,
			QuietZone: 4,
			Dark:      "#000000",
			Light:     "#FFFFFF",
			Format:    "png",
		},
		Logo: LogoConfig{
			Size:         0.20,
			ClearZone:    false,
			Margin:       0.10,
			CornerRadius: 0.20,
			HaloPx:       0,
		},
		Badge: BadgeConfig{
			Text:        "Scan mich",
			Color:       "#0B5FFF",
			TextColor:   "#FFFFFF",
			BorderPx:    12,
			BorderColor: "#0B5FFF",
			Pad:         0.06,
			LabelHeight: 0.20,
			GapPx:       0,
			CornerRatio: 0.12,
		},
		Batch: BatchConfig{
			Workers: 4,
			MaxRows: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
