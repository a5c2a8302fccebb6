package parley

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Name    string
	UserMsg int // User message accent
	Status  int // Transient status notices (cold start, fallback banner)
	Error   int // Error messages
	Success int // Success indicators
	Muted   int // Status bar, placeholders, timestamps
	Accent  int // Session titles, provider name
	Pinned  int // Pinned session marker
}

// DarkTheme returns the default ANSI color mapping.
func DarkTheme() Theme {
	return Theme{
		Name:    "dark",
		UserMsg: 4,
		Status:  3,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
		Pinned:  6,
	}
}

// LightTheme returns an ANSI mapping tuned for light terminal palettes.
func LightTheme() Theme {
	return Theme{
		Name:    "light",
		UserMsg: 12,
		Status:  11,
		Error:   9,
		Success: 10,
		Muted:   7,
		Accent:  13,
		Pinned:  14,
	}
}

// ThemeByName resolves a persisted theme preference. Unknown names fall
// back to the dark theme so a malformed preference blob never fails.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
