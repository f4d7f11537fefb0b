package core

// Color is a "#RRGGBB" colour for a screen cell. The empty string means
// the terminal default.
type Color string

// ColorDefault leaves the terminal colour untouched.
const ColorDefault Color = ""

// Palette used by the tree scene.
const (
	ColorSkyTop     Color = "#4A90D9"
	ColorSkyBottom  Color = "#87CEEB"
	ColorCloud      Color = "#F2F6FA"
	ColorGrass      Color = "#228B22"
	ColorGrassDark  Color = "#1B6B1B"
	ColorTrunk      Color = "#8B4513"
	ColorBark       Color = "#654321"
	ColorBarkLight  Color = "#A0522D"
	ColorBranch     Color = "#6B8E23"
	ColorBranchDark Color = "#556B2F"
	ColorLeaves     Color = "#3D5C2B"
	ColorCanopy     Color = "#2D5A27"
	ColorHardHat    Color = "#FFD700"
	ColorShirt      Color = "#E74C3C"
	ColorSkin       Color = "#FDBF6F"
	ColorTrousers   Color = "#4A4A4A"
	ColorAxeHandle  Color = "#8B4513"
	ColorAxeHead    Color = "#C0C0C0"
	ColorTimerFull  Color = "#32CD32"
	ColorTimerMid   Color = "#FFD700"
	ColorTimerLow   Color = "#FF4500"
	ColorWhite      Color = "#FFFFFF"
	ColorBlack      Color = "#000000"
)
