package config

// Theme holds the colors of the styled CLI output
type Theme struct {
	// Preset name ("default" or "monochrome")
	Preset string `yaml:"preset"`

	Accent string `yaml:"accent"`
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted text, ids
	Normal string `yaml:"normal"`

	// Priority colors
	Low    string `yaml:"low"`
	Medium string `yaml:"medium"`
	High   string `yaml:"high"`

	// Notice colors
	Info    string `yaml:"info"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
}

// DefaultTheme returns the default color scheme (purple theme)
func DefaultTheme() Theme {
	return Theme{
		Preset:  "default",
		Accent:  "#874BFD",
		Title:   "#D75FD7",
		Subtle:  "#585858",
		Normal:  "#D0D0D0",
		Low:     "#5FD75F",
		Medium:  "#FFD700",
		High:    "#FF5F5F",
		Info:    "#00AFFF",
		Warning: "#FFD700",
		Error:   "#FF0000",
	}
}

// MonochromeTheme returns a black and white color scheme
func MonochromeTheme() Theme {
	return Theme{
		Preset:  "monochrome",
		Accent:  "#FFFFFF",
		Title:   "#FFFFFF",
		Subtle:  "#808080",
		Normal:  "#D0D0D0",
		Low:     "#D0D0D0",
		Medium:  "#D0D0D0",
		High:    "#FFFFFF",
		Info:    "#D0D0D0",
		Warning: "#FFFFFF",
		Error:   "#FFFFFF",
	}
}

// PresetTheme returns a preset by name, falling back to the default.
func PresetTheme(name string) Theme {
	if name == "monochrome" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}

// ApplyDefaults fills empty colors from the preset.
func (t *Theme) ApplyDefaults() {
	preset := PresetTheme(t.Preset)
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&t.Preset, preset.Preset)
	fill(&t.Accent, preset.Accent)
	fill(&t.Title, preset.Title)
	fill(&t.Subtle, preset.Subtle)
	fill(&t.Normal, preset.Normal)
	fill(&t.Low, preset.Low)
	fill(&t.Medium, preset.Medium)
	fill(&t.High, preset.High)
	fill(&t.Info, preset.Info)
	fill(&t.Warning, preset.Warning)
	fill(&t.Error, preset.Error)
}
