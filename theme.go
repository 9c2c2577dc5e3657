package xlexport

// Theme is the colour table shared by every report. Values are RGB hex without '#'.
type Theme struct {
	Primary    string `yaml:"primary"`
	OnPrimary  string `yaml:"on_primary"`
	Slate      string `yaml:"slate"`
	Stripe     string `yaml:"stripe"`
	StripeCool string `yaml:"stripe_cool"`
	Muted      string `yaml:"muted"`
	Border     string `yaml:"border"`

	Info    string `yaml:"info"`
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`

	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`

	Blue   string `yaml:"blue"`
	Orange string `yaml:"orange"`
	Purple string `yaml:"purple"`
	Pink   string `yaml:"pink"`
	Amber  string `yaml:"amber"`
	Green  string `yaml:"green"`
	Violet string `yaml:"violet"`

	LightPurple string `yaml:"light_purple"`
	LightGreen  string `yaml:"light_green"`
	LightAmber  string `yaml:"light_amber"`
	LightRed    string `yaml:"light_red"`
	LightBlue   string `yaml:"light_blue"`

	Neutral string `yaml:"neutral"`
	Cream   string `yaml:"cream"`
	Mint    string `yaml:"mint"`
	Sand    string `yaml:"sand"`
	Rose    string `yaml:"rose"`
	Sky     string `yaml:"sky"`
	Leaf    string `yaml:"leaf"`

	Gold   string `yaml:"gold"`
	Silver string `yaml:"silver"`
	Bronze string `yaml:"bronze"`

	LineColor string   `yaml:"line_color"`
	BarColor  string   `yaml:"bar_color"`
	Series    []string `yaml:"series"`
}

// DefaultTheme returns the dashboard palette.
func DefaultTheme() Theme {
	return Theme{
		Primary:    "1F1F1F",
		OnPrimary:  "FFFFFF",
		Slate:      "1E293B",
		Stripe:     "F5F5F5",
		StripeCool: "F8FAFC",
		Muted:      "666666",
		Border:     "E2E8F0",

		Info:    "87CEEB",
		Success: "90EE90",
		Warning: "FFD700",
		Error:   "FF6B6B",

		Positive: "16A34A",
		Negative: "DC2626",

		Blue:   "2563EB",
		Orange: "EA580C",
		Purple: "8B5CF6",
		Pink:   "EC4899",
		Amber:  "F59E0B",
		Green:  "10B981",
		Violet: "9333EA",

		LightPurple: "F3E8FF",
		LightGreen:  "F0FDF4",
		LightAmber:  "FFFBEB",
		LightRed:    "FEF2F2",
		LightBlue:   "EFF6FF",

		Neutral: "E5E7EB",
		Cream:   "FEF3C7",
		Mint:    "86EFAC",
		Sand:    "FDE68A",
		Rose:    "FECACA",
		Sky:     "BFDBFE",
		Leaf:    "BBF7D0",

		Gold:   "FBBF24",
		Silver: "D1D5DB",
		Bronze: "FB923C",

		LineColor: "3B82F6",
		BarColor:  "EF4444",
		Series:    []string{"3B82F6", "EF4444", "10B981", "F59E0B", "8B5CF6", "EC4899", "14B8A6", "F97316"},
	}
}

// Merge fills the empty fields of t from fallback.
func (t Theme) Merge(fallback Theme) Theme {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	t.Primary = pick(t.Primary, fallback.Primary)
	t.OnPrimary = pick(t.OnPrimary, fallback.OnPrimary)
	t.Slate = pick(t.Slate, fallback.Slate)
	t.Stripe = pick(t.Stripe, fallback.Stripe)
	t.StripeCool = pick(t.StripeCool, fallback.StripeCool)
	t.Muted = pick(t.Muted, fallback.Muted)
	t.Border = pick(t.Border, fallback.Border)
	t.Info = pick(t.Info, fallback.Info)
	t.Success = pick(t.Success, fallback.Success)
	t.Warning = pick(t.Warning, fallback.Warning)
	t.Error = pick(t.Error, fallback.Error)
	t.Positive = pick(t.Positive, fallback.Positive)
	t.Negative = pick(t.Negative, fallback.Negative)
	t.Blue = pick(t.Blue, fallback.Blue)
	t.Orange = pick(t.Orange, fallback.Orange)
	t.Purple = pick(t.Purple, fallback.Purple)
	t.Pink = pick(t.Pink, fallback.Pink)
	t.Amber = pick(t.Amber, fallback.Amber)
	t.Green = pick(t.Green, fallback.Green)
	t.Violet = pick(t.Violet, fallback.Violet)
	t.LightPurple = pick(t.LightPurple, fallback.LightPurple)
	t.LightGreen = pick(t.LightGreen, fallback.LightGreen)
	t.LightAmber = pick(t.LightAmber, fallback.LightAmber)
	t.LightRed = pick(t.LightRed, fallback.LightRed)
	t.LightBlue = pick(t.LightBlue, fallback.LightBlue)
	t.Neutral = pick(t.Neutral, fallback.Neutral)
	t.Cream = pick(t.Cream, fallback.Cream)
	t.Mint = pick(t.Mint, fallback.Mint)
	t.Sand = pick(t.Sand, fallback.Sand)
	t.Rose = pick(t.Rose, fallback.Rose)
	t.Sky = pick(t.Sky, fallback.Sky)
	t.Leaf = pick(t.Leaf, fallback.Leaf)
	t.Gold = pick(t.Gold, fallback.Gold)
	t.Silver = pick(t.Silver, fallback.Silver)
	t.Bronze = pick(t.Bronze, fallback.Bronze)
	t.LineColor = pick(t.LineColor, fallback.LineColor)
	t.BarColor = pick(t.BarColor, fallback.BarColor)
	if len(t.Series) == 0 {
		t.Series = fallback.Series
	}
	return t
}

// SeriesColor cycles through the series palette.
func (t Theme) SeriesColor(i int) string {
	if len(t.Series) == 0 {
		return t.LineColor
	}
	return t.Series[i%len(t.Series)]
}

// Title is the banner style of a sheet's first row.
func (t Theme) Title(fill string) CellStyle {
	if fill == "" {
		fill = t.Primary
	}
	return CellStyle{Fill: fill, FontColor: t.OnPrimary, Bold: true, Size: 16, HAlign: "center", VAlign: "center"}
}

// Header is the style of table header cells.
func (t Theme) Header(fill string) CellStyle {
	if fill == "" {
		fill = t.Primary
	}
	return CellStyle{Fill: fill, FontColor: t.OnPrimary, Bold: true, HAlign: "center", VAlign: "center", Wrap: true}
}

// Section is the style of a summary block heading.
func (t Theme) Section(fill string) CellStyle {
	if fill == "" {
		fill = t.Info
	}
	return CellStyle{Fill: fill, Bold: true, Size: 12}
}

// Label is a bold caption.
func (t Theme) Label() CellStyle { return CellStyle{Bold: true} }

// Note is the muted italic style of explanatory text.
func (t Theme) Note() CellStyle {
	return CellStyle{FontColor: t.Muted, Italic: true, Wrap: true, VAlign: "top"}
}

// Signed colours a value by sign: negative red, otherwise green.
func (t Theme) Signed(v float64) CellStyle {
	if v < 0 {
		return CellStyle{FontColor: t.Negative, Bold: true}
	}
	return CellStyle{FontColor: t.Positive, Bold: true}
}

// Medal returns the podium fill for 1-based ranks 1..3.
func (t Theme) Medal(rank int) (string, bool) {
	switch rank {
	case 1:
		return t.Gold, true
	case 2:
		return t.Silver, true
	case 3:
		return t.Bronze, true
	}
	return "", false
}
